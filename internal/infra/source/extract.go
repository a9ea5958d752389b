package source

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractZip expands the ZIP archive at archivePath under destDir,
// preserving relative paths. Every entry's resolved path must stay inside
// destDir; an entry that would escape rejects the whole archive with
// ErrUnsafePath. Symlink entries are rejected for the same reason.
func ExtractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}

	for _, f := range r.File {
		if err := extractEntry(f, root); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, root string) error {
	target, err := safeJoin(root, f.Name)
	if err != nil {
		return err
	}

	mode := f.Mode()
	if mode&os.ModeSymlink != 0 {
		return fmt.Errorf("%w: symlink entry %q", ErrUnsafePath, f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		// encrypted entries surface here as unreadable
		return fmt.Errorf("%w: entry %q: %v", ErrBadArchive, f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("%w: entry %q: %v", ErrBadArchive, f.Name, err)
	}
	return nil
}

// safeJoin resolves name under root and rejects any path that would land
// outside root once cleaned.
func safeJoin(root, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return target, nil
}
