package source

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
)

// codeExtensions is the allow-list of recognized source-code extensions.
var codeExtensions = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".py": true, ".java": true,
	".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".php": true, ".rb": true, ".go": true, ".rs": true,
	".swift": true, ".kt": true, ".scala": true, ".cs": true,
	".m": true, ".sh": true,
}

// ScanDir walks root recursively and loads every recognized source file
// into memory. Paths in the result are relative to root, slash-separated,
// in walk order. A single unreadable file is logged and skipped so one bad
// file does not cost the whole submission its partial results.
func ScanDir(root string) ([]analysis.SourceFile, error) {
	var files []analysis.SourceFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !codeExtensions[filepath.Ext(d.Name())] {
			return nil
		}

		content, rerr := os.ReadFile(path)
		if rerr != nil {
			log.Printf("scan: skipping unreadable file %s: %v", path, rerr)
			return nil
		}

		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		files = append(files, analysis.SourceFile{
			Path:    filepath.ToSlash(rel),
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
