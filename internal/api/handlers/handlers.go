// Package handlers implements the HTTP handlers for the Strata
// backend: conversations and chat, plus CRUD over the configuration
// entities (domains, sites, endpoints, config). All handlers speak to
// storage through the store.Store interface and to the model-serving
// API through the RemoteClient interface, so both can be substituted
// in tests.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/api/middleware"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/remote"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/store"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

// RemoteClient is the slice of the serving-endpoints client the
// handlers need. Satisfied by remote.Client; nil means no remote is
// configured and chat falls back to canned responses.
type RemoteClient interface {
	Configured() bool
	Invoke(ctx context.Context, endpointName string, messages []remote.ChatMessage, userToken string) (string, error)
}

// Handlers holds all handler dependencies.
type Handlers struct {
	Store   store.Store
	Remote  RemoteClient
	Version string
}

func New(s store.Store, rc RemoteClient, version string) *Handlers {
	return &Handlers{Store: s, Remote: rc, Version: version}
}

// ── Health ───────────────────────────────────────────────────

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) VersionInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"version": h.Version})
}

// ── Domains ──────────────────────────────────────────────────

func (h *Handlers) ListDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.Store.GetDomains(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if domains == nil {
		domains = []models.Domain{}
	}
	respondJSON(w, http.StatusOK, domains)
}

func (h *Handlers) CreateDomain(w http.ResponseWriter, r *http.Request) {
	var req models.InsertDomain
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Domain name is required")
		return
	}
	d, err := h.Store.CreateDomain(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, d)
}

func (h *Handlers) UpdateDomain(w http.ResponseWriter, r *http.Request) {
	var req models.DomainUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	d, err := h.Store.UpdateDomain(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handlers) DeleteDomain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.Store.DeleteDomain(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "Domain not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Sites ────────────────────────────────────────────────────

func (h *Handlers) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.Store.GetSites(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sites == nil {
		sites = []models.Site{}
	}
	respondJSON(w, http.StatusOK, sites)
}

// ── Endpoints ────────────────────────────────────────────────

// ListEndpoints filters by the domainId query parameter and
// guarantees the client always sees one default endpoint: when none
// is flagged, the first in the response is promoted.
func (h *Handlers) ListEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.Store.GetEndpoints(r.Context(), r.URL.Query().Get("domainId"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if endpoints == nil {
		endpoints = []models.Endpoint{}
	}
	if len(endpoints) > 0 {
		hasDefault := false
		for _, e := range endpoints {
			if e.IsDefault {
				hasDefault = true
				break
			}
		}
		if !hasDefault {
			endpoints[0].IsDefault = true
		}
	}
	respondJSON(w, http.StatusOK, endpoints)
}

func (h *Handlers) RefreshEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.Store.RefreshEndpointsFromRemote(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if endpoints == nil {
		endpoints = []models.Endpoint{}
	}
	respondJSON(w, http.StatusOK, endpoints)
}

func (h *Handlers) CreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var req models.InsertEndpoint
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Endpoint name is required")
		return
	}
	e, err := h.Store.CreateEndpoint(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (h *Handlers) UpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	var req models.EndpointUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	e, err := h.Store.UpdateEndpoint(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (h *Handlers) DeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Store.DeleteEndpoint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "Endpoint not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Conversations ────────────────────────────────────────────

// ListConversations is scoped to the requesting user when the proxy
// forwarded an identity; anonymous requests see everything, which
// only happens in local development.
func (h *Handlers) ListConversations(w http.ResponseWriter, r *http.Request) {
	uc := middleware.GetUserContext(r.Context())
	convs, err := h.Store.GetConversations(r.Context(), uc.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	respondJSON(w, http.StatusOK, convs)
}

func (h *Handlers) GetConversation(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetConversation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Store.DeleteConversation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ── Config ───────────────────────────────────────────────────

func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Store.GetConfig(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (h *Handlers) SetConfig(w http.ResponseWriter, r *http.Request) {
	var req models.Config
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cfg, err := h.Store.SetConfig(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// ── Helpers ──────────────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps storage errors to status codes: not-found
// becomes 404, everything else is a 500.
func respondStoreError(w http.ResponseWriter, err error) {
	var nf *store.ErrNotFound
	if errors.As(err, &nf) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}
