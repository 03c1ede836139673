// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Scorer ranks candidate experiences for a user by blending four signal
// sub-scores into a single confidence value. All cross-call state lives in
// the user's context; a call either scores against learned context or
// transparently degrades to the fallback ranker. Scoring never hard-fails.
type Scorer struct {
	store    *ContextStore
	cfg      *Config
	fallback *FallbackRanker
	logger   zerolog.Logger

	preference SignalStrategy
	behavioral SignalStrategy
	contextual SignalStrategy
	novelty    SignalStrategy
}

// NewScorer creates a scorer with the default signal strategies.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewScorer(store *ContextStore, cfg *Config, logger zerolog.Logger) *Scorer {
	return &Scorer{
		store:      store,
		cfg:        cfg,
		fallback:   NewFallbackRanker(cfg),
		logger:     logger.With().Str("component", "scorer").Logger(),
		preference: PreferenceAlignment{},
		behavioral: BehavioralFit{},
		contextual: ContextualRelevance{},
		novelty:    Novelty{},
	}
}

// SetStrategies replaces the four signal strategies. Nil arguments keep the
// current strategy for that slot.
func (s *Scorer) SetStrategies(pref, behav, ctx, novelty SignalStrategy) {
	if pref != nil {
		s.preference = pref
	}
	if behav != nil {
		s.behavioral = behav
	}
	if ctx != nil {
		s.contextual = ctx
	}
	if novelty != nil {
		s.novelty = novelty
	}
}

// GenerateMatches produces ranked predictions for the candidates.
//
// When no learned context exists, it attempts a one-shot context bootstrap
// (a user arriving through an unexpected entry point) and serves fallback
// predictions for this call; subsequent interactions then learn against the
// bootstrapped context. The call never returns an error for storage or
// context problems; the UI always receives a ranked list.
func (s *Scorer) GenerateMatches(ctx context.Context, userID string, candidates []Experience, count int) []MatchPrediction {
	count = s.normalizeCount(count)
	if len(candidates) > s.cfg.Limits.MaxCandidates {
		candidates = candidates[:s.cfg.Limits.MaxCandidates]
	}
	if len(candidates) == 0 {
		return []MatchPrediction{}
	}

	uc, ok := s.store.Load(ctx, userID)
	if !ok {
		// Recovery bootstrap so future interactions have a context to learn
		// against. This call itself is served by the fallback: a context
		// created this instant carries no learned signal yet.
		s.store.InitializeUserContext(ctx, userID, "recovered-"+userID)
		s.logger.Info().Str("user_id", userID).Msg("no learned context, serving fallback ranking")
		return s.fallback.Rank(candidates, count)
	}

	if len(uc.Preferences.CraftAffinity) == 0 && len(uc.ConversationMemory) == 0 {
		s.logger.Debug().Str("user_id", userID).Msg("context has no learned signal, serving fallback ranking")
		return s.fallback.Rank(candidates, count)
	}

	prompt := s.ContextPrompt(uc)

	predictions := make([]MatchPrediction, 0, len(candidates))
	for i := range candidates {
		predictions = append(predictions, s.scoreCandidate(uc, &candidates[i], prompt))
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		if predictions[i].Confidence != predictions[j].Confidence {
			return predictions[i].Confidence > predictions[j].Confidence
		}
		return predictions[i].ExperienceID < predictions[j].ExperienceID
	})

	if len(predictions) > count {
		predictions = predictions[:count]
	}
	return predictions
}

// normalizeCount applies the default and maximum prediction counts.
func (s *Scorer) normalizeCount(count int) int {
	if count <= 0 {
		return s.cfg.Limits.DefaultCount
	}
	if count > s.cfg.Limits.MaxCount {
		return s.cfg.Limits.MaxCount
	}
	return count
}

// scoreCandidate computes the four sub-scores and their weighted blend for
// one candidate.
func (s *Scorer) scoreCandidate(uc *UserContext, exp *Experience, prompt string) MatchPrediction {
	pref := clamp01(s.preference.Score(uc, exp))
	behav := clamp01(s.behavioral.Score(uc, exp))
	ctxRel := clamp01(s.contextual.Score(uc, exp))
	novelty := clamp01(s.novelty.Score(uc, exp))

	wp, wb, wc, wn := s.cfg.blendWeights()
	confidence := clamp01(wp*pref + wb*behav + wc*ctxRel + wn*novelty)

	reasoning := MatchReasoning{
		PreferenceAlignment: pref,
		BehavioralFit:       behav,
		ContextualRelevance: ctxRel,
		NoveltyFactor:       novelty,
		ConfidenceFactors:   s.confidenceFactors(pref, behav, ctxRel, novelty),
		UncertaintyFactors:  s.uncertaintyFactors(uc, exp),
	}

	return MatchPrediction{
		ExperienceID:      exp.ID,
		Confidence:        confidence,
		Reasoning:         reasoning,
		ContextualPrompt:  prompt,
		AdaptationSignals: adaptationSignals(exp),
	}
}

// confidenceFactors names the sub-scores above the strong-signal threshold
// using fixed templated phrases.
func (s *Scorer) confidenceFactors(pref, behav, ctxRel, novelty float64) []string {
	threshold := s.cfg.Scoring.StrongSignalThreshold
	var factors []string

	if pref > threshold {
		factors = append(factors, "strong alignment with learned craft and style preferences")
	}
	if behav > threshold {
		factors = append(factors, "pacing and complexity suit this user's behavior profile")
	}
	if ctxRel > threshold {
		factors = append(factors, "fits the current session mood and energy")
	}
	if novelty > threshold {
		factors = append(factors, "offers the kind of novelty this user seeks")
	}

	return factors
}

// uncertaintyFactors names known gaps in the learned signal for this
// candidate.
func (s *Scorer) uncertaintyFactors(uc *UserContext, exp *Experience) []string {
	var factors []string

	if uc.CurrentSession.InteractionCount < 5 {
		factors = append(factors, "limited interaction history this session")
	}
	if _, seen := uc.Preferences.CraftAffinity[exp.Craft]; !seen {
		factors = append(factors, fmt.Sprintf("no prior signal for %s experiences", exp.Craft))
	}

	return factors
}

// adaptationSignals names what a future interaction with this prediction
// would teach the system. Display/debug only.
func adaptationSignals(exp *Experience) []string {
	return []string{
		fmt.Sprintf("craft preference: %s", exp.Craft),
		fmt.Sprintf("price sensitivity at %.0f", exp.Price),
		"style engagement: " + strings.Join(exp.ExperienceStyles, ", "),
	}
}

// ContextPrompt builds the human-readable summary of the user's learned
// state: recent relevant memories, strong preferences, a qualitative behavior
// description, and the current session. It is explanatory output for UI
// display, never a control-flow input.
func (s *Scorer) ContextPrompt(uc *UserContext) string {
	var b strings.Builder

	if memories := s.recentMemories(uc); len(memories) > 0 {
		b.WriteString("Recently: ")
		b.WriteString(strings.Join(memories, "; "))
		b.WriteString(". ")
	}

	if prefs := s.strongPreferences(uc); len(prefs) > 0 {
		b.WriteString("Preferences: ")
		b.WriteString(strings.Join(prefs, ", "))
		b.WriteString(". ")
	}

	b.WriteString("Behavior: ")
	b.WriteString(describeBehavior(&uc.Patterns))
	b.WriteString(". ")

	b.WriteString(describeSession(&uc.CurrentSession))
	b.WriteString(".")

	return b.String()
}

// recentMemories returns the most recent relevant memory contents,
// newest first.
func (s *Scorer) recentMemories(uc *UserContext) []string {
	minDecay := s.cfg.Scoring.PromptMemoryMinDecay
	limit := s.cfg.Scoring.PromptMemoryEntries

	var out []string
	for i := len(uc.ConversationMemory) - 1; i >= 0 && len(out) < limit; i-- {
		entry := &uc.ConversationMemory[i]
		if entry.RelevanceDecay > minDecay {
			out = append(out, entry.Content)
		}
	}
	return out
}

// strongPreferences formats preferences whose absolute affinity exceeds the
// strong-preference threshold, sorted by strength.
func (s *Scorer) strongPreferences(uc *UserContext) []string {
	threshold := s.cfg.Scoring.StrongPreferenceThreshold

	type pref struct {
		label string
		score float64
	}
	var strong []pref

	collect := func(kind string, m map[string]float64) {
		for name, score := range m {
			if score > threshold {
				strong = append(strong, pref{fmt.Sprintf("drawn to %s %s", name, kind), score})
			} else if score < -threshold {
				strong = append(strong, pref{fmt.Sprintf("avoids %s %s", name, kind), -score})
			}
		}
	}
	collect("crafts", uc.Preferences.CraftAffinity)
	collect("styles", uc.Preferences.ExperienceStyle)

	sort.Slice(strong, func(i, j int) bool {
		if strong[i].score != strong[j].score {
			return strong[i].score > strong[j].score
		}
		return strong[i].label < strong[j].label
	})

	out := make([]string, len(strong))
	for i, p := range strong {
		out[i] = p.label
	}
	return out
}

// describeBehavior maps behavioral patterns onto a qualitative phrase.
func describeBehavior(p *BehavioralPatterns) string {
	var traits []string

	if p.SwipeVelocity > 0.7 {
		traits = append(traits, "quick decision maker")
	}
	if p.ExplorationVsExploitation > 0.7 {
		traits = append(traits, "adventurous explorer")
	}
	if p.DecisionConfidence > 0.8 {
		traits = append(traits, "confident and decisive")
	}

	if len(traits) == 0 {
		return "still developing decision patterns"
	}
	return strings.Join(traits, ", ")
}

// describeSession summarizes the current session for the prompt.
func describeSession(sess *SessionState) string {
	return fmt.Sprintf("Session: %d interactions, %s mood, %s energy",
		sess.InteractionCount, sess.Mood, energyBucket(sess.EnergyLevel))
}

// energyBucket maps an energy level onto a qualitative bucket.
func energyBucket(energy float64) string {
	switch {
	case energy > 0.7:
		return "high"
	case energy > 0.4:
		return "moderate"
	default:
		return "low"
	}
}
