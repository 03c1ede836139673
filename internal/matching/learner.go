// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Learner converts one interaction event into a bounded mutation of the
// user's context. Every preference scalar stays within [-1, 1] and every
// pattern scalar within [0, 1] after each update.
type Learner struct {
	store  *ContextStore
	cfg    *Config
	logger zerolog.Logger
	clock  func() time.Time
}

// NewLearner creates a learner over the given context store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLearner(store *ContextStore, cfg *Config, logger zerolog.Logger) *Learner {
	return &Learner{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "learner").Logger(),
		clock:  time.Now,
	}
}

// SetClock overrides the time source. Test helper.
func (l *Learner) SetClock(clock func() time.Time) {
	l.clock = clock
}

// RecordInteraction applies one interaction to the user's context and
// persists the result best-effort. Returns ErrContextNotFound when the user
// was never initialized; persistence failures never fail the call.
func (l *Learner) RecordInteraction(ctx context.Context, interaction *Interaction) (*UserContext, error) {
	if interaction.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidInteraction)
	}
	if !interaction.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInteraction, interaction.Type)
	}

	uc, ok := l.store.Load(ctx, interaction.UserID)
	if !ok {
		return nil, fmt.Errorf("%w: user %q", ErrContextNotFound, interaction.UserID)
	}

	now := l.clock()
	uc.CurrentSession.InteractionCount++
	l.observeTimeOfDay(uc, interaction, now)

	rate := l.learningRate(uc, interaction)
	l.applyTypeUpdate(uc, interaction, rate)
	l.updatePatterns(uc, interaction)

	l.appendMemory(uc, interaction, now)
	l.decayMemory(uc, now)

	uc.CurrentSession.FocusAreas = focusAreas(uc.Preferences.CraftAffinity, 3)

	l.store.Save(ctx, uc)

	l.logger.Debug().
		Str("user_id", interaction.UserID).
		Str("type", string(interaction.Type)).
		Str("experience_id", interaction.ExperienceID).
		Float64("rate", rate).
		Msg("interaction recorded")

	return uc, nil
}

// learningRate computes the per-interaction update magnitude:
// base x decision confidence x session energy x sequence damping.
// Later items in a rapid swipe run influence preferences less, modeling
// fatigue in fast swiping.
func (l *Learner) learningRate(uc *UserContext, interaction *Interaction) float64 {
	damping := 1 - l.cfg.Learning.SequenceDampingStep*float64(interaction.Context.SwipeRunPosition)
	if damping < l.cfg.Learning.SequenceDampingFloor {
		damping = l.cfg.Learning.SequenceDampingFloor
	}

	return l.cfg.Learning.BaseRate *
		uc.Patterns.DecisionConfidence *
		uc.CurrentSession.EnergyLevel *
		damping
}

// applyTypeUpdate applies the signed, type-specific preference update.
// experience_view and price_reaction are recorded to memory only; they carry
// no direct preference signal.
func (l *Learner) applyTypeUpdate(uc *UserContext, interaction *Interaction, rate float64) {
	exp := &interaction.Context.Experience
	prefs := &uc.Preferences

	switch interaction.Type {
	case InteractionSwipeRight:
		bumpAffinity(prefs.CraftAffinity, exp.Craft, rate)
		for _, style := range exp.ExperienceStyles {
			bumpAffinity(prefs.ExperienceStyle, style, rate)
		}
		for _, mood := range exp.QuickMoods {
			bumpAffinity(prefs.MoodAlignment, mood, rate)
		}
		// Liking a price above the assumed ceiling raises price tolerance.
		if exp.Price > 2*prefs.PriceSensitivity*100 {
			prefs.PriceSensitivity = clamp01(prefs.PriceSensitivity + 0.5*rate)
		}

	case InteractionSwipeLeft:
		bumpAffinity(prefs.CraftAffinity, exp.Craft, -rate)
		// Softer negative for styles: "not right now" is weaker evidence
		// than explicit rejection of the craft itself.
		for _, style := range exp.ExperienceStyles {
			bumpAffinity(prefs.ExperienceStyle, style, -0.5*rate)
		}

	case InteractionMatchCelebration:
		bumpAffinity(prefs.CraftAffinity, exp.Craft, 2*rate)

	case InteractionBookingIntent:
		// Real purchase intent outweighs any browsing signal.
		bumpAffinity(prefs.CraftAffinity, exp.Craft, 3*rate)

	case InteractionTimeSpent:
		if interaction.Metadata.SecondsSpent > l.cfg.Learning.DwellThresholdSeconds {
			bumpAffinity(prefs.CraftAffinity, exp.Craft, 0.5*rate)
		}

	case InteractionExperienceView, InteractionPriceReaction:
		// Memory-only.
	}
}

// updatePatterns refreshes behavioral estimates from swipe timing.
func (l *Learner) updatePatterns(uc *UserContext, interaction *Interaction) {
	if interaction.Type != InteractionSwipeRight && interaction.Type != InteractionSwipeLeft {
		return
	}

	gap := interaction.Metadata.SecondsSinceLast
	if gap <= 0 {
		return
	}

	target := 0.0
	if time.Duration(gap*float64(time.Second)) < l.cfg.Learning.RapidSwipeGap {
		target = 1.0
	}

	v := uc.Patterns.SwipeVelocity
	uc.Patterns.SwipeVelocity = clamp01(v + l.cfg.Learning.VelocitySmoothing*(target-v))
}

// observeTimeOfDay nudges the activity frequency for the current time bucket.
func (l *Learner) observeTimeOfDay(uc *UserContext, interaction *Interaction, now time.Time) {
	bucket := interaction.Context.TimeOfDay
	if bucket == "" {
		bucket = TimeOfDayBucket(now)
	}

	v := uc.Patterns.TimeOfDayActivity[bucket]
	uc.Patterns.TimeOfDayActivity[bucket] = clamp01(v + 0.1*(1-v))
}

// appendMemory records the interaction as a fresh conversation-memory entry.
func (l *Learner) appendMemory(uc *UserContext, interaction *Interaction, now time.Time) {
	ts := interaction.Timestamp
	if ts.IsZero() {
		ts = now
	}

	uc.ConversationMemory = append(uc.ConversationMemory, MemoryEntry{
		Timestamp:      ts,
		Content:        summarizeInteraction(interaction),
		Kind:           string(interaction.Type),
		Confidence:     interaction.Type.Confidence(),
		RelevanceDecay: 1.0,
	})
}

// decayMemory recomputes every entry's linear relevance decay, purges entries
// at or below the threshold, and caps the log at the configured maximum,
// keeping the most recent survivors.
func (l *Learner) decayMemory(uc *UserContext, now time.Time) {
	retention := l.cfg.Memory.RetentionDays
	survivors := uc.ConversationMemory[:0]

	for i := range uc.ConversationMemory {
		entry := uc.ConversationMemory[i]
		ageDays := now.Sub(entry.Timestamp).Hours() / 24
		decay := 1 - ageDays/retention
		if decay < 0 {
			decay = 0
		}
		entry.RelevanceDecay = decay

		if decay > l.cfg.Memory.PurgeThreshold {
			survivors = append(survivors, entry)
		}
	}

	if len(survivors) > l.cfg.Memory.MaxEntries {
		survivors = survivors[len(survivors)-l.cfg.Memory.MaxEntries:]
	}
	uc.ConversationMemory = survivors
}

// bumpAffinity applies a signed delta to one affinity entry, clamped to
// [-1, 1]. Empty keys are ignored.
func bumpAffinity(m map[string]float64, key string, delta float64) {
	if key == "" {
		return
	}
	m[key] = clamp(m[key]+delta, -1, 1)
}

// summarizeInteraction renders a human-readable memory line for one event.
func summarizeInteraction(interaction *Interaction) string {
	exp := &interaction.Context.Experience
	subject := exp.Craft
	if subject == "" {
		subject = interaction.ExperienceID
	}
	where := ""
	if exp.Location != "" {
		where = " in " + exp.Location
	}

	switch interaction.Type {
	case InteractionSwipeRight:
		return fmt.Sprintf("liked a %s experience%s", subject, where)
	case InteractionSwipeLeft:
		return fmt.Sprintf("passed on a %s experience%s", subject, where)
	case InteractionMatchCelebration:
		return fmt.Sprintf("celebrated a match with a %s artisan%s", subject, where)
	case InteractionBookingIntent:
		return fmt.Sprintf("started booking a %s experience%s", subject, where)
	case InteractionExperienceView:
		return fmt.Sprintf("viewed a %s experience%s", subject, where)
	case InteractionPriceReaction:
		return fmt.Sprintf("reacted to the price of a %s experience (%.0f)", subject, exp.Price)
	case InteractionTimeSpent:
		return fmt.Sprintf("spent %.0fs on a %s experience%s", interaction.Metadata.SecondsSpent, subject, where)
	default:
		return fmt.Sprintf("interacted with a %s experience%s", subject, where)
	}
}
