package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/backoffice/internal/api/middleware"
)

// Router holds the handlers behind the API routes. A nil Runs handler
// leaves /api/runs unregistered.
type Router struct {
	Files      *FilesHandler
	Jobs       *JobsHandler
	Rates      *RatesHandler
	Rules      *RulesHandler
	Categorize *CategorizeHandler
	Runs       *RunsHandler
}

func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

// Mux registers every route on a new ServeMux.
func (rt *Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	// Files endpoints
	mux.HandleFunc("/api/files/upload", method(http.MethodPost, rt.Files.Upload))
	mux.HandleFunc("/api/files/process", method(http.MethodPost, rt.Files.Process))

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			rt.Jobs.ListJobs(w, r)
		case http.MethodPost:
			rt.Jobs.CreateJob(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", method(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		rt.Jobs.GetJob(w, r, jobID)
	}))

	// Rates endpoints
	mux.HandleFunc("/api/rates", method(http.MethodGet, rt.Rates.ListRates))
	mux.HandleFunc("/api/rates/", method(http.MethodPut, func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/api/rates/")
		if key == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Rate key is required")
			return
		}
		rt.Rates.SetRate(w, r, key)
	}))

	// Rules and categorization
	mux.HandleFunc("/api/rules/learned", method(http.MethodGet, rt.Rules.ListLearned))
	mux.HandleFunc("/api/categorize", method(http.MethodPost, rt.Categorize.Categorize))

	if rt.Runs != nil {
		mux.HandleFunc("/api/runs", method(http.MethodGet, rt.Runs.ListRuns))
	}

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}
