// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package matching

import (
	"time"
)

// InteractionType classifies user events coming from the matching UI.
type InteractionType string

const (
	// InteractionSwipeRight indicates explicit positive interest.
	InteractionSwipeRight InteractionType = "swipe_right"
	// InteractionSwipeLeft indicates explicit rejection.
	InteractionSwipeLeft InteractionType = "swipe_left"
	// InteractionMatchCelebration indicates a mutual match was celebrated.
	InteractionMatchCelebration InteractionType = "match_celebration"
	// InteractionBookingIntent indicates the user started a booking.
	InteractionBookingIntent InteractionType = "booking_intent"
	// InteractionExperienceView indicates the user opened an experience detail.
	InteractionExperienceView InteractionType = "experience_view"
	// InteractionPriceReaction indicates the user reacted to a displayed price.
	InteractionPriceReaction InteractionType = "price_reaction"
	// InteractionTimeSpent reports dwell time on an experience card.
	InteractionTimeSpent InteractionType = "time_spent"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionSwipeRight, InteractionSwipeLeft, InteractionMatchCelebration,
		InteractionBookingIntent, InteractionExperienceView, InteractionPriceReaction,
		InteractionTimeSpent:
		return true
	default:
		return false
	}
}

// Confidence returns the memory confidence weight for this interaction type.
// Higher values indicate stronger preference signal when the event is recalled
// later for scoring explanations.
func (t InteractionType) Confidence() float64 {
	switch t {
	case InteractionBookingIntent:
		return 0.9
	case InteractionMatchCelebration:
		return 0.8
	case InteractionSwipeRight:
		return 0.7
	case InteractionSwipeLeft:
		return 0.6
	default:
		return 0.5
	}
}

// Experience describes a candidate artisan experience supplied by the catalog.
type Experience struct {
	// ID is the unique experience identifier.
	ID string `json:"id"`

	// Craft is the artisan craft category (pottery, weaving, leather, ...).
	Craft string `json:"craft"`

	// Location is the city or medina quarter where the experience happens.
	Location string `json:"location"`

	// Price is the list price in the marketplace currency.
	Price float64 `json:"price"`

	// DurationHours is the scheduled duration of the experience.
	DurationHours float64 `json:"duration_hours"`

	// ArtisanAge is the hosting artisan's age in years.
	ArtisanAge int `json:"artisan_age"`

	// ExperienceStyles are style tags (hands-on, demonstration, workshop-tour).
	ExperienceStyles []string `json:"experience_styles,omitempty"`

	// QuickMoods are the moods the experience is curated for.
	QuickMoods []string `json:"quick_moods,omitempty"`

	// Tags are free-form catalog tags.
	Tags []string `json:"tags,omitempty"`
}

// InteractionContext snapshots the situation in which an interaction happened.
type InteractionContext struct {
	// Experience is a snapshot of the candidate's attributes at event time.
	Experience Experience `json:"experience"`

	// TimeOfDay is the coarse time bucket (morning, afternoon, evening, night).
	TimeOfDay string `json:"time_of_day,omitempty"`

	// DayOfWeek is the day the interaction occurred (0=Sunday).
	DayOfWeek int `json:"day_of_week"`

	// SwipeRunPosition is the position within the current rapid swipe run.
	// The first card of a run is position 0.
	SwipeRunPosition int `json:"swipe_run_position"`

	// RecentSwipeDirections holds the last five swipe directions, newest last.
	RecentSwipeDirections []string `json:"recent_swipe_directions,omitempty"`

	// SessionDurationSeconds is how long the session had been running.
	SessionDurationSeconds float64 `json:"session_duration_seconds"`
}

// InteractionMetadata carries optional measurements attached by the UI.
type InteractionMetadata struct {
	// SecondsSpent is the dwell time for time_spent events.
	SecondsSpent float64 `json:"seconds_spent,omitempty"`

	// SecondsSinceLast is the gap since the previous interaction.
	// Used for swipe velocity estimation; zero means unknown.
	SecondsSinceLast float64 `json:"seconds_since_last,omitempty"`
}

// Interaction is a single immutable user event consumed by the learner.
type Interaction struct {
	// ID uniquely identifies the event. Assigned by the service if empty.
	ID string `json:"id"`

	// UserID is the user the event belongs to.
	UserID string `json:"user_id"`

	// SessionID groups events within one browsing session.
	SessionID string `json:"session_id"`

	// Timestamp is when the event occurred. Defaults to receipt time.
	Timestamp time.Time `json:"timestamp"`

	// Type classifies the event.
	Type InteractionType `json:"type"`

	// ExperienceID is the experience the event refers to.
	ExperienceID string `json:"experience_id"`

	// Context snapshots the candidate attributes and situational data.
	Context InteractionContext `json:"context"`

	// Metadata carries optional measurements.
	Metadata InteractionMetadata `json:"metadata"`
}

// AgePreference captures the learned preferred artisan age band.
type AgePreference struct {
	// Min is the lower bound of the preferred band in years.
	Min int `json:"min"`

	// Max is the upper bound of the preferred band in years.
	Max int `json:"max"`

	// Strength is how strongly the band matters, in [0, 1].
	Strength float64 `json:"strength"`
}

// Preferences holds the learned affinity vectors for one user.
// Every map entry stays within [-1, 1]; PriceSensitivity stays within [0, 1].
type Preferences struct {
	// CraftAffinity maps craft category to learned affinity.
	CraftAffinity map[string]float64 `json:"craft_affinity"`

	// ExperienceStyle maps style tag to learned affinity.
	ExperienceStyle map[string]float64 `json:"experience_style"`

	// MoodAlignment maps mood to learned affinity.
	MoodAlignment map[string]float64 `json:"mood_alignment"`

	// LocationPreference maps location to learned affinity.
	LocationPreference map[string]float64 `json:"location_preference"`

	// TagResonance maps catalog tag to learned affinity.
	TagResonance map[string]float64 `json:"tag_resonance"`

	// PriceSensitivity is price tolerance in [0, 1]; higher tolerates more.
	PriceSensitivity float64 `json:"price_sensitivity"`

	// ArtisanAgePreference is the learned preferred artisan age band.
	ArtisanAgePreference AgePreference `json:"artisan_age_preference"`
}

// BehavioralPatterns holds behavioral scalars, each in [0, 1].
type BehavioralPatterns struct {
	// SwipeVelocity trends toward 1 when consecutive swipes are rapid.
	SwipeVelocity float64 `json:"swipe_velocity"`

	// DecisionConfidence estimates how decisively the user acts.
	DecisionConfidence float64 `json:"decision_confidence"`

	// ExplorationVsExploitation estimates appetite for novelty.
	ExplorationVsExploitation float64 `json:"exploration_vs_exploitation"`

	// SessionEngagement estimates overall engagement depth.
	SessionEngagement float64 `json:"session_engagement"`

	// TimeOfDayActivity maps time bucket to observed activity frequency.
	TimeOfDayActivity map[string]float64 `json:"time_of_day_activity"`
}

// MemoryEntry is one bounded conversation-memory record.
type MemoryEntry struct {
	// Timestamp is when the underlying interaction happened.
	Timestamp time.Time `json:"timestamp"`

	// Content is a human-readable summary of the interaction.
	Content string `json:"content"`

	// Kind classifies the entry (the originating interaction type).
	Kind string `json:"kind"`

	// Confidence is the signal weight assigned at creation time.
	Confidence float64 `json:"confidence"`

	// RelevanceDecay is the current relevance in [0, 1]. Recomputed on every
	// learner update; entries at or below the purge threshold are dropped.
	RelevanceDecay float64 `json:"relevance_decay"`
}

// SessionState is the ephemeral per-session portion of a user context.
type SessionState struct {
	// StartedAt is when the session began.
	StartedAt time.Time `json:"started_at"`

	// InteractionCount is monotonically non-decreasing within a session.
	InteractionCount int `json:"interaction_count"`

	// Mood is the inferred session mood.
	Mood string `json:"mood"`

	// EnergyLevel is the inferred energy in [0, 1].
	EnergyLevel float64 `json:"energy_level"`

	// FocusAreas are the top craft categories with affinity above 0.5.
	FocusAreas []string `json:"focus_areas,omitempty"`
}

// UserContext is the complete learned state for one user. It is owned by the
// ContextStore and mutated only through the Learner.
type UserContext struct {
	// UserID identifies the user.
	UserID string `json:"user_id"`

	// SessionID is the most recent session identifier.
	SessionID string `json:"session_id"`

	// Preferences are the learned affinity vectors.
	Preferences Preferences `json:"preferences"`

	// Patterns are the learned behavioral scalars.
	Patterns BehavioralPatterns `json:"patterns"`

	// ConversationMemory is the bounded, decaying memory log, newest last.
	ConversationMemory []MemoryEntry `json:"conversation_memory"`

	// CurrentSession is the ephemeral session state.
	CurrentSession SessionState `json:"current_session"`

	// CreatedAt is when the context was first created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the context was last persisted.
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchReasoning breaks a prediction's confidence into its four sub-scores.
type MatchReasoning struct {
	// PreferenceAlignment measures fit with learned craft/style affinities.
	PreferenceAlignment float64 `json:"preference_alignment"`

	// BehavioralFit measures fit with the user's pacing and complexity profile.
	BehavioralFit float64 `json:"behavioral_fit"`

	// ContextualRelevance measures fit with current session mood and energy.
	ContextualRelevance float64 `json:"contextual_relevance"`

	// NoveltyFactor balances familiarity against exploration tendency.
	NoveltyFactor float64 `json:"novelty_factor"`

	// ConfidenceFactors names the sub-scores that strongly support the match.
	ConfidenceFactors []string `json:"confidence_factors,omitempty"`

	// UncertaintyFactors names known gaps in the learned signal.
	UncertaintyFactors []string `json:"uncertainty_factors,omitempty"`
}

// MatchPrediction is one ranked scoring result. Predictions are ephemeral and
// recomputed on every call; they are never persisted.
type MatchPrediction struct {
	// ExperienceID identifies the scored experience.
	ExperienceID string `json:"experience_id"`

	// Confidence is the blended score in [0, 1], higher is better.
	Confidence float64 `json:"confidence"`

	// Reasoning is the sub-score breakdown behind Confidence.
	Reasoning MatchReasoning `json:"reasoning"`

	// ContextualPrompt is a human-readable rationale for UI display.
	ContextualPrompt string `json:"contextual_prompt"`

	// AdaptationSignals names what acting on this prediction would teach
	// the system. Display/debug only.
	AdaptationSignals []string `json:"adaptation_signals,omitempty"`
}

// TimeOfDayBucket maps an hour of day to a coarse activity bucket.
func TimeOfDayBucket(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "morning"
	case h >= 12 && h < 17:
		return "afternoon"
	case h >= 17 && h < 22:
		return "evening"
	default:
		return "night"
	}
}
