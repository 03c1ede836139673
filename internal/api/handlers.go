// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/medinamatch/medinamatch/internal/catalog"
	"github.com/medinamatch/medinamatch/internal/config"
	"github.com/medinamatch/medinamatch/internal/kv"
	"github.com/medinamatch/medinamatch/internal/logging"
	"github.com/medinamatch/medinamatch/internal/matching"
	"github.com/medinamatch/medinamatch/internal/metrics"
	ws "github.com/medinamatch/medinamatch/internal/websocket"
)

// maxRequestBody caps interaction payloads. Interaction bodies are small;
// anything larger is malformed or hostile.
const maxRequestBody = 256 * 1024

// Handler processes HTTP requests for the matching API.
type Handler struct {
	svc       *matching.Service
	catalog   catalog.Provider
	store     kv.Store
	wsHub     *ws.Hub
	config    *config.Config
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// Dependencies:
//   - svc: the matching service owning user contexts, learning, and scoring
//   - provider: the experience catalog used as the candidate pool
//   - store: the context store backend, used by readiness probes
//   - wsHub: WebSocket hub for live learning broadcasts (may be nil)
//   - cfg: application configuration (may be nil for tests)
func NewHandler(svc *matching.Service, provider catalog.Provider, store kv.Store, wsHub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		svc:       svc,
		catalog:   provider,
		store:     store,
		wsHub:     wsHub,
		config:    cfg,
		startTime: time.Now(),
	}
}

// InitContextRequest is the payload for POST /api/v1/context/init.
type InitContextRequest struct {
	UserID    string `json:"user_id" validate:"required,max=128"`
	SessionID string `json:"session_id" validate:"omitempty,max=128"`
}

// InteractionRequest is the payload for POST /api/v1/interactions.
// Experience optionally snapshots the candidate's attributes; when omitted
// the handler resolves it from the catalog by ExperienceID.
type InteractionRequest struct {
	UserID           string                        `json:"user_id" validate:"required,max=128"`
	SessionID        string                        `json:"session_id" validate:"omitempty,max=128"`
	Type             string                        `json:"type" validate:"required,interaction_type"`
	ExperienceID     string                        `json:"experience_id" validate:"omitempty,max=128"`
	Experience       *matching.Experience          `json:"experience,omitempty"`
	Context          *matching.InteractionContext  `json:"context,omitempty"`
	Metadata         *matching.InteractionMetadata `json:"metadata,omitempty"`
	SwipeRunPosition int                           `json:"swipe_run_position" validate:"gte=0"`
}

// InitContext handles POST /api/v1/context/init. It creates a fresh user
// context or resets the session on a returning user's existing context.
func (h *Handler) InitContext(w http.ResponseWriter, r *http.Request) {
	var req InitContextRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	uc := h.svc.InitializeUserContext(r.Context(), req.UserID, req.SessionID)

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"user_id":        uc.UserID,
			"session_id":     uc.SessionID,
			"mood":           uc.CurrentSession.Mood,
			"energy_level":   uc.CurrentSession.EnergyLevel,
			"focus_areas":    uc.CurrentSession.FocusAreas,
			"memory_entries": len(uc.ConversationMemory),
		},
		Metadata: Metadata{
			Timestamp: time.Now(),
		},
	})
}

// RecordInteraction handles POST /api/v1/interactions. The interaction is
// validated, applied to the user's learned context, and broadcast to
// connected WebSocket clients as a learning_update event.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		metrics.RecordInteractionRejected("validation")
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	interaction := h.buildInteraction(r, &req)

	uc, err := h.svc.RecordInteraction(r.Context(), interaction)
	if err != nil {
		switch {
		case errors.Is(err, matching.ErrContextNotFound):
			metrics.RecordInteractionRejected("context_not_found")
			respondError(w, http.StatusNotFound, "CONTEXT_NOT_FOUND", "User context not initialized", nil)
		case errors.Is(err, matching.ErrInvalidInteraction):
			metrics.RecordInteractionRejected("invalid")
			respondError(w, http.StatusBadRequest, "INVALID_INTERACTION", "Interaction rejected", err)
		default:
			metrics.RecordInteractionRejected("internal")
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record interaction", err)
		}
		return
	}

	metrics.RecordInteraction(string(interaction.Type))
	if h.wsHub != nil {
		h.wsHub.BroadcastLearningUpdate(uc.UserID, string(interaction.Type), interaction.ExperienceID, len(uc.ConversationMemory))
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"interaction_id": interaction.ID,
			"user_id":        uc.UserID,
			"memory_entries": len(uc.ConversationMemory),
			"mood":           uc.CurrentSession.Mood,
			"focus_areas":    uc.CurrentSession.FocusAreas,
		},
		Metadata: Metadata{
			Timestamp: time.Now(),
		},
	})
}

// buildInteraction maps the request payload onto the learner's event type,
// resolving the experience snapshot from the catalog when the client only
// sent an ID.
func (h *Handler) buildInteraction(r *http.Request, req *InteractionRequest) *matching.Interaction {
	interaction := &matching.Interaction{
		UserID:       req.UserID,
		SessionID:    req.SessionID,
		Type:         matching.InteractionType(req.Type),
		ExperienceID: req.ExperienceID,
	}

	if req.Context != nil {
		interaction.Context = *req.Context
	}
	if req.Metadata != nil {
		interaction.Metadata = *req.Metadata
	}
	interaction.Context.SwipeRunPosition = req.SwipeRunPosition

	switch {
	case req.Experience != nil:
		interaction.Context.Experience = *req.Experience
		if interaction.ExperienceID == "" {
			interaction.ExperienceID = req.Experience.ID
		}
	case interaction.Context.Experience.ID == "" && req.ExperienceID != "":
		if exp, ok := h.lookupExperience(r, req.ExperienceID); ok {
			interaction.Context.Experience = exp
		}
	}

	return interaction
}

// lookupExperience resolves an experience snapshot from the catalog.
// Best-effort: a catalog outage degrades the learning signal but must not
// reject the interaction.
func (h *Handler) lookupExperience(r *http.Request, experienceID string) (matching.Experience, bool) {
	if h.catalog == nil {
		return matching.Experience{}, false
	}

	experiences, err := h.catalog.Experiences(r.Context())
	if err != nil {
		logging.Warn().Err(err).Str("experience_id", sanitizeLogValue(experienceID)).Msg("catalog lookup failed, recording interaction without snapshot")
		return matching.Experience{}, false
	}
	for _, exp := range experiences {
		if exp.ID == experienceID {
			return exp, true
		}
	}
	return matching.Experience{}, false
}

// Matches handles GET /api/v1/matches/{userID}. Candidates come from the
// catalog; users without learned context get the exploratory fallback set.
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "userID path parameter is required", nil)
		return
	}

	maxCount := 100
	if h.config != nil && h.config.Matching.MaxCount > 0 {
		maxCount = h.config.Matching.MaxCount
	}
	count := getIntParam(r, "count", 0)
	if count < 0 || count > maxCount {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "count is out of range", nil)
		return
	}

	candidates, err := h.catalog.Experiences(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "Experience catalog is unavailable", err)
		return
	}

	_, known := h.svc.DescribeContext(r.Context(), userID)

	start := time.Now()
	predictions := h.svc.GenerateMatches(r.Context(), userID, candidates, count)
	queryTime := time.Since(start)

	metrics.RecordMatchRequest(len(candidates), !known, queryTime)
	if h.wsHub != nil {
		h.wsHub.BroadcastMatchesReady(userID, len(predictions), !known)
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"user_id":     userID,
			"count":       len(predictions),
			"fallback":    !known,
			"predictions": predictions,
		},
		Metadata: Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: queryTime.Milliseconds(),
		},
	})
}

// MatchContext handles GET /api/v1/matches/{userID}/context, exposing what
// the system has learned about a user.
func (h *Handler) MatchContext(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "userID path parameter is required", nil)
		return
	}

	summary, ok := h.svc.DescribeContext(r.Context(), userID)
	if !ok {
		respondError(w, http.StatusNotFound, "CONTEXT_NOT_FOUND", "User context not initialized", nil)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   summary,
		Metadata: Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Catalog handles GET /api/v1/experiences, returning the current candidate
// pool for browsing UIs.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	experiences, err := h.catalog.Experiences(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "Experience catalog is unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"count":       len(experiences),
			"experiences": experiences,
		},
		Metadata: Metadata{
			Timestamp: time.Now(),
		},
	})
}

// decodeBody decodes and size-limits a JSON request body. Writes the error
// response itself and returns false on failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", err)
		return false
	}
	return true
}
