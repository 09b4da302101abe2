package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fieldops/handler/dbsync"
	"github.com/fieldops/handler/oracle"
	"github.com/fieldops/handler/quest"
)

func newRouter(svc *quest.Service, sync *dbsync.Reconciler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/api/ping", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format("2006-01-02T15:04:05.000Z")})
	})

	r.Post("/api/recon/add", func(w http.ResponseWriter, req *http.Request) {
		var in quest.IngestInput
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, 400, err)
			return
		}
		res, err := svc.Ingest(req.Context(), in)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, 200, map[string]any{
			"ok":              true,
			"recon_id":        res.ReconID,
			"modules_created": res.ModulesCreated,
			"recon_status":    res.ReconStatus,
		})
	})

	r.Get("/api/recon/list", func(w http.ResponseWriter, req *http.Request) {
		list, err := svc.ListRecon(req.Context(), queryInt(req, "limit", -1))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "items": list.Items, "module_count": list.ModuleCount})
	})

	r.Get("/api/modules/list", func(w http.ResponseWriter, req *http.Request) {
		items, err := svc.ListModules(req.Context(), queryInt(req, "limit", -1), req.URL.Query().Get("tag"))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "items": items})
	})

	r.Post("/api/quest/generate", func(w http.ResponseWriter, req *http.Request) {
		var in quest.QuestInput
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, 400, err)
			return
		}
		q, err := svc.GenerateQuest(req.Context(), in)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, 200, q)
	})

	r.Post("/api/feedback", func(w http.ResponseWriter, req *http.Request) {
		var in quest.FeedbackInput
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, 400, err)
			return
		}
		id, err := svc.AddFeedback(req.Context(), in)
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "feedback_id": id})
	})

	r.Post("/api/sync/push", func(w http.ResponseWriter, req *http.Request) {
		var in struct {
			ClientID string         `json:"client_id"`
			Changes  dbsync.Changes `json:"changes"`
		}
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, 400, err)
			return
		}
		applied, err := sync.Push(req.Context(), in.ClientID, in.Changes)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "applied": applied})
	})

	r.Get("/api/sync/pull", func(w http.ResponseWriter, req *http.Request) {
		res, err := sync.Pull(req.Context(), req.URL.Query().Get("since"), queryInt(req, "limit", 0))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, map[string]any{
			"ok":        true,
			"since":     res.Since,
			"server_ts": res.ServerTS,
			"changes":   res.Changes,
		})
	})

	return r
}

// statusFor maps domain errors onto HTTP codes. Input mistakes are 400,
// oracle failures 502, anything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, quest.ErrMissingURL),
		errors.Is(err, quest.ErrFetchFailed),
		errors.Is(err, quest.ErrInsufficientText),
		errors.Is(err, dbsync.ErrMissingClientID):
		return 400
	case errors.Is(err, oracle.ErrInvalidOutput):
		return 502
	default:
		return 500
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{"ok": false, "error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
