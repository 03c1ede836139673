// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package matching

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/medinamatch/medinamatch/internal/cache"
	"github.com/medinamatch/medinamatch/internal/kv"
)

// contextKeyPrefix namespaces user contexts in the key-value store.
const contextKeyPrefix = "usercontext:"

// Read-through cache sizing for serialized contexts. Entries stay small
// (memory is capped per user) so a few thousand hot users fit comfortably.
const (
	contextCacheSize = 4096
	contextCacheTTL  = 10 * time.Minute
)

// focusAffinityThreshold selects focus crafts for session inference.
const focusAffinityThreshold = 0.5

// ContextStore owns the lifecycle and persistence of UserContext records.
//
// Persistence is best-effort by design: loads fail soft (missing context and
// storage failure both present as "not found"), and save failures are logged
// but never propagated, so the in-memory learning step always completes.
// One record per user, last write wins; there is no concurrent-writer
// protection because contexts are scoped to a single client session.
type ContextStore struct {
	store  kv.Store
	cache  *cache.LRU[[]byte]
	logger zerolog.Logger
	clock  func() time.Time
}

// NewContextStore creates a context store over the given key-value boundary.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewContextStore(store kv.Store, logger zerolog.Logger) *ContextStore {
	return &ContextStore{
		store:  store,
		cache:  cache.NewLRU[[]byte](contextCacheSize, contextCacheTTL),
		logger: logger.With().Str("component", "context-store").Logger(),
		clock:  time.Now,
	}
}

// SetClock overrides the time source. Test helper.
func (s *ContextStore) SetClock(clock func() time.Time) {
	s.clock = clock
}

// InitializeUserContext loads the context for userID, refreshing its session,
// or bootstraps a new one if none exists. The returned context is always
// usable in memory even when persistence is unavailable.
func (s *ContextStore) InitializeUserContext(ctx context.Context, userID, sessionID string) *UserContext {
	now := s.clock()

	if uc, ok := s.Load(ctx, userID); ok {
		uc.SessionID = sessionID
		uc.CurrentSession = s.inferSession(uc, now)
		s.Save(ctx, uc)
		return uc
	}

	uc := s.newUserContext(userID, sessionID, now)
	s.Save(ctx, uc)
	return uc
}

// Load retrieves the context for userID, serving hot users from the
// read-through cache. It fails soft: both a missing record and a storage
// failure return ok=false, with failures logged. Each call unmarshals a
// fresh copy so callers can mutate freely.
func (s *ContextStore) Load(ctx context.Context, userID string) (*UserContext, bool) {
	key := contextKeyPrefix + userID

	if data, ok := s.cache.Get(key); ok {
		if uc, ok := s.decode(data, userID); ok {
			return uc, true
		}
		s.cache.Remove(key)
	}

	data, err := s.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("context load failed")
		return nil, false
	}

	uc, ok := s.decode(data, userID)
	if !ok {
		return nil, false
	}

	s.cache.Set(key, data)
	return uc, true
}

// decode unmarshals a stored context, logging corrupt records.
func (s *ContextStore) decode(data []byte, userID string) (*UserContext, bool) {
	var uc UserContext
	if err := json.Unmarshal(data, &uc); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("context unmarshal failed")
		return nil, false
	}

	ensureMaps(&uc)
	return &uc, true
}

// Save persists the context. Failures are logged and swallowed; callers must
// not assume durability.
func (s *ContextStore) Save(ctx context.Context, uc *UserContext) {
	uc.UpdatedAt = s.clock()

	data, err := json.Marshal(uc)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uc.UserID).Msg("context marshal failed")
		return
	}

	key := contextKeyPrefix + uc.UserID
	s.cache.Set(key, data)

	if err := s.store.Set(ctx, key, data); err != nil {
		s.logger.Error().Err(err).Str("user_id", uc.UserID).Msg("context save failed")
	}
}

// newUserContext bootstraps a context for a first-time user: empty preference
// vectors, neutral price sensitivity, neutral behavioral priors, and an
// optimistic energy prior for the first session.
func (s *ContextStore) newUserContext(userID, sessionID string, now time.Time) *UserContext {
	return &UserContext{
		UserID:    userID,
		SessionID: sessionID,
		Preferences: Preferences{
			CraftAffinity:      make(map[string]float64),
			ExperienceStyle:    make(map[string]float64),
			MoodAlignment:      make(map[string]float64),
			LocationPreference: make(map[string]float64),
			TagResonance:       make(map[string]float64),
			PriceSensitivity:   0.5,
			ArtisanAgePreference: AgePreference{
				Min:      18,
				Max:      80,
				Strength: 0.0,
			},
		},
		Patterns: BehavioralPatterns{
			SwipeVelocity:             0.5,
			DecisionConfidence:        0.5,
			ExplorationVsExploitation: 0.5,
			SessionEngagement:         0.6,
			TimeOfDayActivity:         make(map[string]float64),
		},
		ConversationMemory: []MemoryEntry{},
		CurrentSession: SessionState{
			StartedAt:        now,
			InteractionCount: 0,
			Mood:             "curious",
			EnergyLevel:      0.7,
		},
		CreatedAt: now,
	}
}

// inferSession derives fresh session state for a returning user from their
// learned patterns and preferences.
func (s *ContextStore) inferSession(uc *UserContext, now time.Time) SessionState {
	return SessionState{
		StartedAt:        now,
		InteractionCount: 0,
		Mood:             inferMood(&uc.Patterns),
		EnergyLevel:      inferEnergy(&uc.Patterns),
		FocusAreas:       focusAreas(uc.Preferences.CraftAffinity, 3),
	}
}

// inferMood maps behavioral patterns onto a qualitative session mood.
func inferMood(p *BehavioralPatterns) string {
	switch {
	case p.ExplorationVsExploitation > 0.7:
		return "adventurous"
	case p.DecisionConfidence > 0.8:
		return "focused"
	case p.SessionEngagement > 0.7:
		return "engaged"
	default:
		return "curious"
	}
}

// inferEnergy estimates session energy from engagement, clamped to [0, 1].
func inferEnergy(p *BehavioralPatterns) float64 {
	return clamp01(0.4 + 0.4*p.SessionEngagement)
}

// focusAreas returns up to n crafts whose affinity exceeds the focus
// threshold, strongest first. Ties break alphabetically for determinism.
func focusAreas(affinity map[string]float64, n int) []string {
	type craftScore struct {
		craft string
		score float64
	}

	strong := make([]craftScore, 0, len(affinity))
	for craft, score := range affinity {
		if score > focusAffinityThreshold {
			strong = append(strong, craftScore{craft, score})
		}
	}

	sort.Slice(strong, func(i, j int) bool {
		if strong[i].score != strong[j].score {
			return strong[i].score > strong[j].score
		}
		return strong[i].craft < strong[j].craft
	})

	if len(strong) > n {
		strong = strong[:n]
	}

	out := make([]string, len(strong))
	for i, cs := range strong {
		out[i] = cs.craft
	}
	return out
}

// ensureMaps replaces nil maps after deserialization so mutation paths never
// write to a nil map.
func ensureMaps(uc *UserContext) {
	if uc.Preferences.CraftAffinity == nil {
		uc.Preferences.CraftAffinity = make(map[string]float64)
	}
	if uc.Preferences.ExperienceStyle == nil {
		uc.Preferences.ExperienceStyle = make(map[string]float64)
	}
	if uc.Preferences.MoodAlignment == nil {
		uc.Preferences.MoodAlignment = make(map[string]float64)
	}
	if uc.Preferences.LocationPreference == nil {
		uc.Preferences.LocationPreference = make(map[string]float64)
	}
	if uc.Preferences.TagResonance == nil {
		uc.Preferences.TagResonance = make(map[string]float64)
	}
	if uc.Patterns.TimeOfDayActivity == nil {
		uc.Patterns.TimeOfDayActivity = make(map[string]float64)
	}
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clamp01 bounds v to [0, 1].
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
