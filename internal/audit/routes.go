package audit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Fareedsea/todo-chatbot/internal/server"
)

// RegisterRoutes mounts the audit API. Listings are always scoped to the
// caller's own invocations.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/audit/invocations", handleList(store))
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := Query{
			SubjectID: server.Subject(r.Context()),
			Tool:      r.URL.Query().Get("tool"),
		}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
				return
			}
			q.Limit = limit
		}

		invocations, err := store.List(r.Context(), q)
		if err != nil {
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		if invocations == nil {
			invocations = []*Invocation{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"invocations": invocations})
	}
}
