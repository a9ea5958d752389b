package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appjobs "github.com/bryanwahyu/sentinel-ai/internal/application/jobs"
	domai "github.com/bryanwahyu/sentinel-ai/internal/domain/ai"
	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/jobs"
	"github.com/bryanwahyu/sentinel-ai/internal/infra/source"
	"github.com/bryanwahyu/sentinel-ai/internal/infra/ws"
	"github.com/bryanwahyu/sentinel-ai/internal/middleware"
)

// cap multipart archives at 50 MB
const maxArchiveBytes = 50 << 20

type Router struct {
	jobsSvc *appjobs.Service
	hub     *ws.Hub
}

func NewRouter(jobsSvc *appjobs.Service, hub *ws.Hub, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{jobsSvc: jobsSvc, hub: hub}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	if len(checkers) > 0 {
		mux.Get("/health", middleware.HealthHandler(checkers))
	} else {
		mux.Get("/health", middleware.LivenessHandler)
	}
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleSubmit))
		rt.Get("/jobs", r.wrap(r.handleList))
		rt.Get("/jobs/{id}", r.wrap(r.handleGet))
	})

	mux.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(r.hub, w, req)
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domain.ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, domain.ErrNoSourceFiles):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			case errors.Is(err, source.ErrBadArchive), errors.Is(err, source.ErrUnsafePath):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// POST /v1/analyze
// Accepts either a multipart upload with an "archive" ZIP part, or a JSON
// body {"repo_url": "..."}. Returns {id, status} as soon as the pending job
// exists; analysis runs in the background and is observed by polling.
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	principal := middleware.PrincipalFromContext(req.Context())
	cmd := appjobs.SubmitCommand{OwnerID: principal.UserID}

	contentType := req.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		archivePath, cleanup, err := saveUploadedArchive(req)
		if err != nil {
			return err
		}
		defer cleanup()
		cmd.ArchivePath = archivePath

	case strings.HasPrefix(contentType, "application/json"):
		var body struct {
			RepoURL string `json:"repo_url"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return err
		}
		if body.RepoURL == "" {
			return fmt.Errorf("repo_url is required")
		}
		cmd.RepoURL = body.RepoURL

	default:
		return fmt.Errorf("unsupported content type: %s", contentType)
	}

	result, err := r.jobsSvc.Submit(req.Context(), cmd)
	if err != nil {
		return err
	}
	// only submissions that produced a job count
	middleware.IncrementJobs()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(result)
}

// GET /v1/jobs/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	principal := middleware.PrincipalFromContext(req.Context())
	id := chi.URLParam(req, "id")

	job, err := r.jobsSvc.Get(req.Context(), domain.JobID(id), principal)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(job)
}

// GET /v1/jobs
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	principal := middleware.PrincipalFromContext(req.Context())

	list, err := r.jobsSvc.ListByOwner(req.Context(), principal)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.AnalysisJob{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// saveUploadedArchive spools the "archive" part to a temp file the submit
// path can extract from. The returned cleanup removes it.
func saveUploadedArchive(req *http.Request) (string, func(), error) {
	if err := req.ParseMultipartForm(maxArchiveBytes); err != nil {
		return "", nil, fmt.Errorf("%w: %v", source.ErrBadArchive, err)
	}
	part, _, err := req.FormFile("archive")
	if err != nil {
		return "", nil, fmt.Errorf("archive file is required: %w", err)
	}
	defer part.Close()

	tmp, err := os.CreateTemp("", "upload-*.zip")
	if err != nil {
		return "", nil, err
	}
	if _, err := io.Copy(tmp, part); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}
