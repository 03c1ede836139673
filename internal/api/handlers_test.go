// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/medinamatch/medinamatch/internal/catalog"
	"github.com/medinamatch/medinamatch/internal/kv"
	"github.com/medinamatch/medinamatch/internal/logging"
	"github.com/medinamatch/medinamatch/internal/matching"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// testEnvelope mirrors APIResponse with a generic data payload for decoding.
type testEnvelope struct {
	Status string                 `json:"status"`
	Data   map[string]interface{} `json:"data"`
	Error  *APIError              `json:"error"`
}

// newTestHandler builds a handler on a memory store with the seeded catalog
// and no hub or config.
func newTestHandler(t *testing.T) (*Handler, kv.Store) {
	t.Helper()
	store := kv.NewMemoryStore()
	svc := matching.NewService(store, matching.DefaultConfig(), zerolog.Nop())
	return NewHandler(svc, catalog.NewStaticProvider(nil), store, nil, nil), store
}

// serveJSON runs a handler func against a JSON body and decodes the envelope
func serveJSON(t *testing.T, fn http.HandlerFunc, method, target string, body interface{}) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	fn(rec, req)

	var envelope testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to decode response envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, envelope
}

func TestInitContext(t *testing.T) {
	t.Run("creates context", func(t *testing.T) {
		h, _ := newTestHandler(t)

		rec, envelope := serveJSON(t, h.InitContext, http.MethodPost, "/api/v1/context/init",
			InitContextRequest{UserID: "user-1", SessionID: "session-1"})

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
		}
		if envelope.Status != "success" {
			t.Errorf("Envelope status = %q, want %q", envelope.Status, "success")
		}
		if envelope.Data["user_id"] != "user-1" {
			t.Errorf("user_id = %v, want %q", envelope.Data["user_id"], "user-1")
		}
		if envelope.Data["session_id"] != "session-1" {
			t.Errorf("session_id = %v, want %q", envelope.Data["session_id"], "session-1")
		}
		if envelope.Data["mood"] != "curious" {
			t.Errorf("mood = %v, want %q", envelope.Data["mood"], "curious")
		}
	})

	t.Run("generates session id when omitted", func(t *testing.T) {
		h, _ := newTestHandler(t)

		_, envelope := serveJSON(t, h.InitContext, http.MethodPost, "/api/v1/context/init",
			InitContextRequest{UserID: "user-1"})

		sessionID, _ := envelope.Data["session_id"].(string)
		if sessionID == "" {
			t.Error("Expected a generated session_id, got empty")
		}
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		h, _ := newTestHandler(t)

		rec, envelope := serveJSON(t, h.InitContext, http.MethodPost, "/api/v1/context/init",
			InitContextRequest{SessionID: "session-1"})

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("Error = %+v, want VALIDATION_ERROR", envelope.Error)
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		h, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/context/init", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		h.InitContext(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		var envelope testEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if envelope.Error == nil || envelope.Error.Code != "INVALID_JSON" {
			t.Errorf("Error = %+v, want INVALID_JSON", envelope.Error)
		}
	})
}

func TestRecordInteraction(t *testing.T) {
	pottery := matching.Experience{
		ID:               "exp-pottery-1",
		Craft:            "pottery",
		Location:         "Fes",
		Price:            80,
		ExperienceStyles: []string{"hands-on"},
		QuickMoods:       []string{"creative"},
	}

	t.Run("requires initialized context", func(t *testing.T) {
		h, _ := newTestHandler(t)

		rec, envelope := serveJSON(t, h.RecordInteraction, http.MethodPost, "/api/v1/interactions",
			InteractionRequest{UserID: "ghost", Type: "swipe_right", Experience: &pottery})

		if rec.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusNotFound)
		}
		if envelope.Error == nil || envelope.Error.Code != "CONTEXT_NOT_FOUND" {
			t.Errorf("Error = %+v, want CONTEXT_NOT_FOUND", envelope.Error)
		}
	})

	t.Run("records a swipe", func(t *testing.T) {
		h, _ := newTestHandler(t)
		serveJSON(t, h.InitContext, http.MethodPost, "/api/v1/context/init",
			InitContextRequest{UserID: "user-1"})

		rec, envelope := serveJSON(t, h.RecordInteraction, http.MethodPost, "/api/v1/interactions",
			InteractionRequest{UserID: "user-1", Type: "swipe_right", Experience: &pottery})

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d\nbody: %v", rec.Code, http.StatusOK, envelope.Error)
		}
		if envelope.Data["memory_entries"] != float64(1) {
			t.Errorf("memory_entries = %v, want 1", envelope.Data["memory_entries"])
		}
		id, _ := envelope.Data["interaction_id"].(string)
		if id == "" {
			t.Error("Expected a generated interaction_id, got empty")
		}
	})

	t.Run("rejects unknown interaction type", func(t *testing.T) {
		h, _ := newTestHandler(t)
		serveJSON(t, h.InitContext, http.MethodPost, "/api/v1/context/init",
			InitContextRequest{UserID: "user-1"})

		rec, envelope := serveJSON(t, h.RecordInteraction, http.MethodPost, "/api/v1/interactions",
			InteractionRequest{UserID: "user-1", Type: "teleport", Experience: &pottery})

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("Error = %+v, want VALIDATION_ERROR", envelope.Error)
		}
	})

	t.Run("resolves experience snapshot from catalog", func(t *testing.T) {
		h, _ := newTestHandler(t)
		serveJSON(t, h.InitContext, http.MethodPost, "/api/v1/context/init",
			InitContextRequest{UserID: "user-1"})

		rec, _ := serveJSON(t, h.RecordInteraction, http.MethodPost, "/api/v1/interactions",
			InteractionRequest{UserID: "user-1", Type: "swipe_right", ExperienceID: "exp-fes-pottery-01"})
		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		summary, ok := h.svc.DescribeContext(req.Context(), "user-1")
		if !ok {
			t.Fatal("Expected user context to exist")
		}
		if summary.CraftAffinity["pottery"] <= 0 {
			t.Errorf("CraftAffinity[pottery] = %v, want positive after catalog-resolved swipe", summary.CraftAffinity["pottery"])
		}
	})
}

func TestMatches(t *testing.T) {
	seedCount := len(catalog.SeedExperiences())

	matchesVia := func(t *testing.T, h *Handler, target, userID string) (*httptest.ResponseRecorder, testEnvelope) {
		t.Helper()
		r := chi.NewRouter()
		r.Get("/api/v1/matches/{userID}", h.Matches)
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		var envelope testEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("Failed to decode response for %s: %v", userID, err)
		}
		return rec, envelope
	}

	t.Run("fallback for unknown user", func(t *testing.T) {
		h, _ := newTestHandler(t)

		rec, envelope := matchesVia(t, h, "/api/v1/matches/stranger", "stranger")

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
		}
		if envelope.Data["fallback"] != true {
			t.Errorf("fallback = %v, want true", envelope.Data["fallback"])
		}
		if envelope.Data["count"] != float64(seedCount) {
			t.Errorf("count = %v, want %d", envelope.Data["count"], seedCount)
		}
	})

	t.Run("learned user is not fallback", func(t *testing.T) {
		h, _ := newTestHandler(t)
		serveJSON(t, h.InitContext, http.MethodPost, "/api/v1/context/init",
			InitContextRequest{UserID: "user-1"})

		_, envelope := matchesVia(t, h, "/api/v1/matches/user-1", "user-1")
		if envelope.Data["fallback"] != false {
			t.Errorf("fallback = %v, want false", envelope.Data["fallback"])
		}
	})

	t.Run("count caps results", func(t *testing.T) {
		h, _ := newTestHandler(t)

		_, envelope := matchesVia(t, h, "/api/v1/matches/stranger?count=2", "stranger")
		if envelope.Data["count"] != float64(2) {
			t.Errorf("count = %v, want 2", envelope.Data["count"])
		}
	})

	t.Run("count above maximum is rejected", func(t *testing.T) {
		h, _ := newTestHandler(t)

		rec, envelope := matchesVia(t, h, "/api/v1/matches/stranger?count=101", "stranger")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("Error = %+v, want VALIDATION_ERROR", envelope.Error)
		}
	})

	t.Run("catalog outage returns 503", func(t *testing.T) {
		store := kv.NewMemoryStore()
		svc := matching.NewService(store, matching.DefaultConfig(), zerolog.Nop())
		h := NewHandler(svc, failingProvider{}, store, nil, nil)

		rec, envelope := matchesVia(t, h, "/api/v1/matches/stranger", "stranger")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
		if envelope.Error == nil || envelope.Error.Code != "CATALOG_UNAVAILABLE" {
			t.Errorf("Error = %+v, want CATALOG_UNAVAILABLE", envelope.Error)
		}
	})
}

func TestMatchContext(t *testing.T) {
	contextVia := func(t *testing.T, h *Handler, target string) (*httptest.ResponseRecorder, testEnvelope) {
		t.Helper()
		r := chi.NewRouter()
		r.Get("/api/v1/matches/{userID}/context", h.MatchContext)
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		var envelope testEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		return rec, envelope
	}

	t.Run("unknown user returns 404", func(t *testing.T) {
		h, _ := newTestHandler(t)

		rec, envelope := contextVia(t, h, "/api/v1/matches/stranger/context")
		if rec.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusNotFound)
		}
		if envelope.Error == nil || envelope.Error.Code != "CONTEXT_NOT_FOUND" {
			t.Errorf("Error = %+v, want CONTEXT_NOT_FOUND", envelope.Error)
		}
	})

	t.Run("initialized user returns summary", func(t *testing.T) {
		h, _ := newTestHandler(t)
		serveJSON(t, h.InitContext, http.MethodPost, "/api/v1/context/init",
			InitContextRequest{UserID: "user-1"})

		rec, envelope := contextVia(t, h, "/api/v1/matches/user-1/context")
		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
		}
		if envelope.Data["user_id"] != "user-1" {
			t.Errorf("user_id = %v, want %q", envelope.Data["user_id"], "user-1")
		}
		prompt, _ := envelope.Data["context_prompt"].(string)
		if prompt == "" {
			t.Error("Expected a non-empty context_prompt")
		}
	})
}

func TestCatalogEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/experiences", nil)
	rec := httptest.NewRecorder()
	h.Catalog(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	var envelope testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if envelope.Data["count"] != float64(len(catalog.SeedExperiences())) {
		t.Errorf("count = %v, want %d", envelope.Data["count"], len(catalog.SeedExperiences()))
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("live is always ok", func(t *testing.T) {
		h, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
		rec := httptest.NewRecorder()
		h.HealthLive(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("ready with reachable store", func(t *testing.T) {
		h, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
		rec := httptest.NewRecorder()
		h.HealthReady(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("ready without store is 503", func(t *testing.T) {
		store := kv.NewMemoryStore()
		svc := matching.NewService(store, matching.DefaultConfig(), zerolog.Nop())
		h := NewHandler(svc, catalog.NewStaticProvider(nil), nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
		rec := httptest.NewRecorder()
		h.HealthReady(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})

	t.Run("health reports degraded without store", func(t *testing.T) {
		store := kv.NewMemoryStore()
		svc := matching.NewService(store, matching.DefaultConfig(), zerolog.Nop())
		h := NewHandler(svc, catalog.NewStaticProvider(nil), nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		rec := httptest.NewRecorder()
		h.Health(rec, req)

		var envelope testEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if envelope.Data["status"] != "degraded" {
			t.Errorf("status = %v, want %q", envelope.Data["status"], "degraded")
		}
	})
}

func TestWebSocketWithoutHub(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	rec := httptest.NewRecorder()
	h.WebSocket(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

// failingProvider simulates an unavailable upstream catalog.
type failingProvider struct{}

func (failingProvider) Experiences(context.Context) ([]matching.Experience, error) {
	return nil, catalog.ErrUnavailable
}
