// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medinamatch/medinamatch/internal/kv"
)

// Service is the single entry point the transport layer talks to. It owns the
// context store, the learner and the scorer, and keeps their wiring private.
type Service struct {
	store   *ContextStore
	learner *Learner
	scorer  *Scorer
	cfg     *Config
	logger  zerolog.Logger
	clock   func() time.Time
}

// NewService wires a matching service over the given key-value store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(store kv.Store, cfg *Config, logger zerolog.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	contexts := NewContextStore(store, logger)
	return &Service{
		store:   contexts,
		learner: NewLearner(contexts, cfg, logger),
		scorer:  NewScorer(contexts, cfg, logger),
		cfg:     cfg,
		logger:  logger.With().Str("component", "matching").Logger(),
		clock:   time.Now,
	}
}

// SetClock overrides the time source for tests. It propagates to the store
// and learner so decay and session math stay consistent.
func (s *Service) SetClock(clock func() time.Time) {
	s.clock = clock
	s.store.SetClock(clock)
	s.learner.SetClock(clock)
}

// Scorer exposes the scorer for strategy injection in tests.
func (s *Service) Scorer() *Scorer {
	return s.scorer
}

// InitializeUserContext loads or creates the learned context for a user and
// refreshes its session state. It never fails.
func (s *Service) InitializeUserContext(ctx context.Context, userID, sessionID string) *UserContext {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return s.store.InitializeUserContext(ctx, userID, sessionID)
}

// RecordInteraction validates and applies a single interaction, assigning an
// event ID and timestamp when the caller leaves them empty. The returned
// context reflects the state after learning.
func (s *Service) RecordInteraction(ctx context.Context, interaction *Interaction) (*UserContext, error) {
	if interaction == nil {
		return nil, ErrInvalidInteraction
	}
	if interaction.ID == "" {
		interaction.ID = uuid.NewString()
	}
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = s.clock()
	}
	return s.learner.RecordInteraction(ctx, interaction)
}

// GenerateMatches scores the candidates against the user's learned context
// and returns the top count predictions. It never fails: unknown users are
// bootstrapped and served the exploratory fallback ranking.
func (s *Service) GenerateMatches(ctx context.Context, userID string, candidates []Experience, count int) []MatchPrediction {
	return s.scorer.GenerateMatches(ctx, userID, candidates, count)
}

// ContextSummary is the read-only learned-state view served over the API.
type ContextSummary struct {
	UserID           string             `json:"user_id"`
	SessionID        string             `json:"session_id"`
	CraftAffinity    map[string]float64 `json:"craft_affinity"`
	ExperienceStyle  map[string]float64 `json:"experience_style"`
	MoodAlignment    map[string]float64 `json:"mood_alignment"`
	PriceSensitivity float64            `json:"price_sensitivity"`
	Patterns         BehavioralPatterns `json:"patterns"`
	FocusAreas       []string           `json:"focus_areas,omitempty"`
	MemoryEntries    int                `json:"memory_entries"`
	ContextPrompt    string             `json:"context_prompt"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// DescribeContext returns a summary of what the system has learned about a
// user, or false when no context exists yet.
func (s *Service) DescribeContext(ctx context.Context, userID string) (*ContextSummary, bool) {
	uc, ok := s.store.Load(ctx, userID)
	if !ok {
		return nil, false
	}
	return &ContextSummary{
		UserID:           uc.UserID,
		SessionID:        uc.SessionID,
		CraftAffinity:    uc.Preferences.CraftAffinity,
		ExperienceStyle:  uc.Preferences.ExperienceStyle,
		MoodAlignment:    uc.Preferences.MoodAlignment,
		PriceSensitivity: uc.Preferences.PriceSensitivity,
		Patterns:         uc.Patterns,
		FocusAreas:       uc.CurrentSession.FocusAreas,
		MemoryEntries:    len(uc.ConversationMemory),
		ContextPrompt:    s.scorer.ContextPrompt(uc),
		UpdatedAt:        uc.UpdatedAt,
	}, true
}
