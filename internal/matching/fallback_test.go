// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package matching

import (
	"testing"
)

func fallbackCandidates() []Experience {
	return []Experience{
		{ID: "exp-1", Craft: "pottery", Price: 80, ExperienceStyles: []string{"hands-on"}},
		{ID: "exp-2", Craft: "weaving", Price: 120},
		{ID: "exp-3", Craft: "leather", Price: 60, ExperienceStyles: []string{"workshop-tour"}},
		{ID: "exp-4", Craft: "zellige", Price: 200},
	}
}

func TestFallbackRanker_Rank(t *testing.T) {
	ranker := NewFallbackRanker(DefaultConfig())

	t.Run("confidence stays in the fallback band", func(t *testing.T) {
		for _, p := range ranker.Rank(fallbackCandidates(), 10) {
			if p.Confidence < 0.5 || p.Confidence >= 0.8 {
				t.Errorf("confidence for %s = %f, want in [0.5, 0.8)", p.ExperienceID, p.Confidence)
			}
		}
	})

	t.Run("novelty is fixed high", func(t *testing.T) {
		for _, p := range ranker.Rank(fallbackCandidates(), 10) {
			if !almostEqual(p.Reasoning.NoveltyFactor, 0.8) {
				t.Errorf("novelty for %s = %f, want 0.8", p.ExperienceID, p.Reasoning.NoveltyFactor)
			}
		}
	})

	t.Run("exploratory rationale attached", func(t *testing.T) {
		for _, p := range ranker.Rank(fallbackCandidates(), 10) {
			if p.ContextualPrompt != fallbackPrompt {
				t.Errorf("prompt for %s = %q", p.ExperienceID, p.ContextualPrompt)
			}
			if len(p.Reasoning.UncertaintyFactors) == 0 {
				t.Errorf("no uncertainty factors for %s", p.ExperienceID)
			}
		}
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		first := ranker.Rank(fallbackCandidates(), 10)
		second := ranker.Rank(fallbackCandidates(), 10)

		if len(first) != len(second) {
			t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i].ExperienceID != second[i].ExperienceID {
				t.Errorf("order differs at %d: %s vs %s", i, first[i].ExperienceID, second[i].ExperienceID)
			}
			if !almostEqual(first[i].Confidence, second[i].Confidence) {
				t.Errorf("confidence differs for %s", first[i].ExperienceID)
			}
		}
	})

	t.Run("sorted by confidence descending", func(t *testing.T) {
		predictions := ranker.Rank(fallbackCandidates(), 10)
		for i := 1; i < len(predictions); i++ {
			if predictions[i].Confidence > predictions[i-1].Confidence {
				t.Errorf("predictions not sorted at index %d", i)
			}
		}
	})

	t.Run("count caps the result", func(t *testing.T) {
		if got := len(ranker.Rank(fallbackCandidates(), 2)); got != 2 {
			t.Errorf("len = %d, want 2", got)
		}
		if got := len(ranker.Rank(fallbackCandidates(), 100)); got != 4 {
			t.Errorf("len = %d, want 4", got)
		}
	})

	t.Run("non-positive count uses the default", func(t *testing.T) {
		if got := len(ranker.Rank(fallbackCandidates(), 0)); got != 4 {
			t.Errorf("len = %d, want all 4 under the default count", got)
		}
	})

	t.Run("empty candidates yield empty result", func(t *testing.T) {
		if got := len(ranker.Rank(nil, 10)); got != 0 {
			t.Errorf("len = %d, want 0", got)
		}
	})
}
