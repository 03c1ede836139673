// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package matching

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// fallbackPrompt is the rationale attached to every fallback prediction.
const fallbackPrompt = "You're new here! We're showing you a variety of experiences to learn your preferences."

// FallbackRanker produces a safe, clearly-exploratory ranking when no learned
// context exists or scoring cannot proceed. It never fails: confidence values
// land in [0.5, 0.8) with a deterministic per-experience spread, and the
// novelty factor is fixed high to label the ranking as exploration.
type FallbackRanker struct {
	cfg *Config
}

// NewFallbackRanker creates a fallback ranker.
func NewFallbackRanker(cfg *Config) *FallbackRanker {
	return &FallbackRanker{cfg: cfg}
}

// Rank returns up to count predictions over the candidates, sorted by
// confidence descending. The spread is a stable hash of the experience ID,
// so repeated calls with the same candidates produce the same order.
func (f *FallbackRanker) Rank(candidates []Experience, count int) []MatchPrediction {
	if count <= 0 {
		count = f.cfg.Limits.DefaultCount
	}

	predictions := make([]MatchPrediction, 0, len(candidates))
	for i := range candidates {
		exp := &candidates[i]
		confidence := 0.5 + 0.3*idSpread(exp.ID)

		predictions = append(predictions, MatchPrediction{
			ExperienceID: exp.ID,
			Confidence:   confidence,
			Reasoning: MatchReasoning{
				PreferenceAlignment: 0.5,
				BehavioralFit:       0.5,
				ContextualRelevance: 0.5,
				NoveltyFactor:       0.8,
				UncertaintyFactors:  []string{"no learned preferences yet"},
			},
			ContextualPrompt:  fallbackPrompt,
			AdaptationSignals: fallbackSignals(exp),
		})
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

// fallbackSignals names what a first interaction would teach the system.
func fallbackSignals(exp *Experience) []string {
	signals := []string{
		fmt.Sprintf("initial craft interest: %s", exp.Craft),
		fmt.Sprintf("price comfort around %.0f", exp.Price),
	}
	if len(exp.ExperienceStyles) > 0 {
		signals = append(signals, "style preference: "+strings.Join(exp.ExperienceStyles, ", "))
	}
	return signals
}

// idSpread hashes an experience ID onto [0, 1) deterministically.
func idSpread(id string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return float64(h.Sum32()%1000) / 1000
}
