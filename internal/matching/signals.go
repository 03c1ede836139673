// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package matching

// SignalStrategy computes one scoring sub-signal in [0, 1] for a candidate
// experience given a user context. The scorer blends exactly four signals
// (preference, behavioral, contextual, novelty); individual strategies can be
// swapped without changing the scorer's contract.
type SignalStrategy interface {
	// Name returns the signal identifier used in reasoning output.
	Name() string

	// Score returns the signal value in [0, 1].
	Score(uc *UserContext, exp *Experience) float64
}

// PreferenceAlignment scores how well an experience matches the learned
// craft and style affinities. Affinities live in [-1, 1] and are mapped to
// [0, 1] before averaging; an unknown craft or style reads as neutral 0.5.
type PreferenceAlignment struct{}

// Name implements SignalStrategy.
func (PreferenceAlignment) Name() string { return "preference_alignment" }

// Score implements SignalStrategy.
func (PreferenceAlignment) Score(uc *UserContext, exp *Experience) float64 {
	craft := affinityToUnit(uc.Preferences.CraftAffinity[exp.Craft])

	if len(exp.ExperienceStyles) == 0 {
		return craft
	}

	var styleSum float64
	for _, style := range exp.ExperienceStyles {
		styleSum += affinityToUnit(uc.Preferences.ExperienceStyle[style])
	}
	styleAvg := styleSum / float64(len(exp.ExperienceStyles))

	return (craft + styleAvg) / 2
}

// BehavioralFit scores alignment between the user's pacing/complexity profile
// and the experience. The current implementation is a documented baseline:
// the pacing model is an extension point awaiting a real signal, so it
// returns a fixed moderately-positive value.
type BehavioralFit struct{}

// Name implements SignalStrategy.
func (BehavioralFit) Name() string { return "behavioral_fit" }

// Score implements SignalStrategy.
func (BehavioralFit) Score(_ *UserContext, _ *Experience) float64 {
	return 0.7
}

// ContextualRelevance scores fit with the current session mood and energy.
// Baseline implementation; the mood/energy matching model is an extension
// point awaiting a real signal.
type ContextualRelevance struct{}

// Name implements SignalStrategy.
func (ContextualRelevance) Name() string { return "contextual_relevance" }

// Score implements SignalStrategy.
func (ContextualRelevance) Score(_ *UserContext, _ *Experience) float64 {
	return 0.6
}

// Novelty balances familiarity against the user's exploration tendency.
// Baseline implementation; a familiarity model over interaction history is
// the intended upgrade path.
type Novelty struct{}

// Name implements SignalStrategy.
func (Novelty) Name() string { return "novelty_factor" }

// Score implements SignalStrategy.
func (Novelty) Score(_ *UserContext, _ *Experience) float64 {
	return 0.5
}

// affinityToUnit maps a [-1, 1] affinity onto [0, 1], with 0 reading as a
// neutral 0.5.
func affinityToUnit(a float64) float64 {
	return clamp01((a + 1) / 2)
}
