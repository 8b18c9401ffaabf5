// Package httpapi exposes the entity services as JSON routes.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/krisalay/msea-cache/api"
	"github.com/krisalay/msea-cache/fetcher"
	"github.com/krisalay/msea-cache/service"
	"github.com/krisalay/msea-cache/types"
)

// NameLookup resolves display names to ids.
type NameLookup interface {
	CharacterID(ctx context.Context, name string) (string, error)
	GuildID(ctx context.Context, name, world string) (string, error)
}

// StatsFunc returns the value served at /debug/cache.
type StatsFunc func() any

// Handlers holds the dependencies of every route.
type Handlers struct {
	characters api.EntityService
	guilds     api.EntityService
	lookup     NameLookup
	stats      StatsFunc
	logger     *zap.Logger
}

// New builds the handlers. stats may be nil.
func New(characters, guilds api.EntityService, lookup NameLookup, stats StatsFunc, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		characters: characters,
		guilds:     guilds,
		lookup:     lookup,
		stats:      stats,
		logger:     logger,
	}
}

// Routes registers every route on a new mux.
func (h *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()
	h.mountEntity(mux, "/characters", h.characters)
	h.mountEntity(mux, "/guilds", h.guilds)
	mux.HandleFunc("GET /lookup/character", h.lookupCharacter)
	mux.HandleFunc("GET /lookup/guild", h.lookupGuild)
	mux.HandleFunc("GET /debug/cache", h.debugCache)
	return mux
}

func (h *Handlers) mountEntity(mux *http.ServeMux, base string, svc api.EntityService) {
	mux.HandleFunc("GET "+base, func(w http.ResponseWriter, r *http.Request) {
		ids := svc.ListCachedIDs(r.Context())
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"ids": ids})
	})
	mux.HandleFunc("DELETE "+base, func(w http.ResponseWriter, r *http.Request) {
		svc.InvalidateAll(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.Fetch(r.Context(), r.PathValue("id"))
		h.writeRecord(w, rec, err)
	})
	mux.HandleFunc("POST "+base+"/{id}/refresh", func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.Refresh(r.Context(), r.PathValue("id"))
		h.writeRecord(w, rec, err)
	})
	mux.HandleFunc("GET "+base+"/{id}/cached", func(w http.ResponseWriter, r *http.Request) {
		rec := svc.ReadPersisted(r.Context(), r.PathValue("id"))
		if rec == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "not cached"})
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})
	mux.HandleFunc("DELETE "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		svc.Invalidate(r.Context(), r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
}

func (h *Handlers) writeRecord(w http.ResponseWriter, rec *types.Record, err error) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var fetchErr *fetcher.Error
	switch {
	case errors.Is(err, service.ErrMissingID), errors.Is(err, service.ErrMissingName):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.As(err, &fetchErr):
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": fetchErr.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, map[string]any{"error": "request cancelled"})
	default:
		h.logger.Warn("request failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "upstream error"})
	}
}

func (h *Handlers) lookupCharacter(w http.ResponseWriter, r *http.Request) {
	ocid, err := h.lookup.CharacterID(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ocid": ocid})
}

func (h *Handlers) lookupGuild(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := h.lookup.GuildID(r.Context(), q.Get("name"), q.Get("world"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"oguild_id": id})
}

func (h *Handlers) debugCache(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, h.stats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}
