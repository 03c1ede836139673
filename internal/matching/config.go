// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package matching

import (
	"fmt"
	"time"
)

// Config contains all tunables for the adaptive matching engine.
type Config struct {
	// Learning contains preference-update parameters.
	Learning LearningConfig `json:"learning"`

	// Memory contains conversation-memory retention parameters.
	Memory MemoryConfig `json:"memory"`

	// Scoring contains the sub-score blend weights and thresholds.
	Scoring ScoringConfig `json:"scoring"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`
}

// LearningConfig contains preference-update parameters.
type LearningConfig struct {
	// BaseRate is the base learning rate before situational scaling.
	// Default: 0.1.
	BaseRate float64 `json:"base_rate"`

	// SequenceDampingStep reduces the rate per position in a swipe run,
	// modeling fatigue in rapid swiping. Default: 0.05.
	SequenceDampingStep float64 `json:"sequence_damping_step"`

	// SequenceDampingFloor is the minimum damping multiplier. Default: 0.5.
	SequenceDampingFloor float64 `json:"sequence_damping_floor"`

	// RapidSwipeGap is the maximum gap between swipes considered rapid.
	// Gaps under this pull swipe velocity toward 1. Default: 3s.
	RapidSwipeGap time.Duration `json:"rapid_swipe_gap"`

	// VelocitySmoothing is the exponential-average factor for swipe velocity.
	// Default: 0.3.
	VelocitySmoothing float64 `json:"velocity_smoothing"`

	// DwellThresholdSeconds is the minimum dwell time treated as mild
	// positive interest for time_spent events. Default: 10.
	DwellThresholdSeconds float64 `json:"dwell_threshold_seconds"`
}

// MemoryConfig contains conversation-memory retention parameters.
type MemoryConfig struct {
	// MaxEntries caps the memory log length. Default: 50.
	MaxEntries int `json:"max_entries"`

	// RetentionDays is the linear-decay window in days. An entry's relevance
	// reaches zero at this age. Default: 30.
	RetentionDays float64 `json:"retention_days"`

	// PurgeThreshold drops entries whose relevance decays to or below this
	// value. Default: 0.1.
	PurgeThreshold float64 `json:"purge_threshold"`
}

// ScoringConfig contains the sub-score blend weights and thresholds.
type ScoringConfig struct {
	// PreferenceWeight is the blend weight for preference alignment.
	// Default: 0.4.
	PreferenceWeight float64 `json:"preference_weight"`

	// BehavioralWeight is the blend weight for behavioral fit. Default: 0.3.
	BehavioralWeight float64 `json:"behavioral_weight"`

	// ContextualWeight is the blend weight for contextual relevance.
	// Default: 0.2.
	ContextualWeight float64 `json:"contextual_weight"`

	// NoveltyWeight is the blend weight for the novelty factor. Default: 0.1.
	NoveltyWeight float64 `json:"novelty_weight"`

	// StrongSignalThreshold is the sub-score level named as a confidence
	// factor in rationales. Default: 0.7.
	StrongSignalThreshold float64 `json:"strong_signal_threshold"`

	// StrongPreferenceThreshold selects preferences worth summarizing in the
	// contextual prompt. Default: 0.3.
	StrongPreferenceThreshold float64 `json:"strong_preference_threshold"`

	// PromptMemoryEntries is how many recent memory entries feed the
	// contextual prompt. Default: 10.
	PromptMemoryEntries int `json:"prompt_memory_entries"`

	// PromptMemoryMinDecay is the minimum relevance for an entry to feed the
	// contextual prompt. Default: 0.3.
	PromptMemoryMinDecay float64 `json:"prompt_memory_min_decay"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultCount is the default number of predictions returned. Default: 10.
	DefaultCount int `json:"default_count"`

	// MaxCount is the maximum allowed prediction count. Default: 100.
	MaxCount int `json:"max_count"`

	// MaxCandidates caps the number of candidates scored per call.
	// Default: 500.
	MaxCandidates int `json:"max_candidates"`
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Learning: LearningConfig{
			BaseRate:              0.1,
			SequenceDampingStep:   0.05,
			SequenceDampingFloor:  0.5,
			RapidSwipeGap:         3 * time.Second,
			VelocitySmoothing:     0.3,
			DwellThresholdSeconds: 10,
		},
		Memory: MemoryConfig{
			MaxEntries:     50,
			RetentionDays:  30,
			PurgeThreshold: 0.1,
		},
		Scoring: ScoringConfig{
			PreferenceWeight:          0.4,
			BehavioralWeight:          0.3,
			ContextualWeight:          0.2,
			NoveltyWeight:             0.1,
			StrongSignalThreshold:     0.7,
			StrongPreferenceThreshold: 0.3,
			PromptMemoryEntries:       10,
			PromptMemoryMinDecay:      0.3,
		},
		Limits: LimitsConfig{
			DefaultCount:  10,
			MaxCount:      100,
			MaxCandidates: 500,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Learning.BaseRate <= 0 || c.Learning.BaseRate > 1 {
		return fmt.Errorf("learning.base_rate must be in (0, 1], got %f", c.Learning.BaseRate)
	}
	if c.Learning.SequenceDampingFloor <= 0 || c.Learning.SequenceDampingFloor > 1 {
		return fmt.Errorf("learning.sequence_damping_floor must be in (0, 1], got %f", c.Learning.SequenceDampingFloor)
	}
	if c.Learning.RapidSwipeGap <= 0 {
		return fmt.Errorf("learning.rapid_swipe_gap must be positive, got %v", c.Learning.RapidSwipeGap)
	}
	if c.Learning.VelocitySmoothing <= 0 || c.Learning.VelocitySmoothing > 1 {
		return fmt.Errorf("learning.velocity_smoothing must be in (0, 1], got %f", c.Learning.VelocitySmoothing)
	}

	if c.Memory.MaxEntries < 1 {
		return fmt.Errorf("memory.max_entries must be positive, got %d", c.Memory.MaxEntries)
	}
	if c.Memory.RetentionDays <= 0 {
		return fmt.Errorf("memory.retention_days must be positive, got %f", c.Memory.RetentionDays)
	}
	if c.Memory.PurgeThreshold < 0 || c.Memory.PurgeThreshold >= 1 {
		return fmt.Errorf("memory.purge_threshold must be in [0, 1), got %f", c.Memory.PurgeThreshold)
	}

	weightSum := c.Scoring.PreferenceWeight + c.Scoring.BehavioralWeight +
		c.Scoring.ContextualWeight + c.Scoring.NoveltyWeight
	if weightSum <= 0 {
		return fmt.Errorf("scoring weights must sum to a positive value, got %f", weightSum)
	}
	for name, w := range map[string]float64{
		"preference_weight": c.Scoring.PreferenceWeight,
		"behavioral_weight": c.Scoring.BehavioralWeight,
		"contextual_weight": c.Scoring.ContextualWeight,
		"novelty_weight":    c.Scoring.NoveltyWeight,
	} {
		if w < 0 {
			return fmt.Errorf("scoring.%s must be non-negative, got %f", name, w)
		}
	}

	if c.Limits.DefaultCount < 1 {
		return fmt.Errorf("limits.default_count must be positive, got %d", c.Limits.DefaultCount)
	}
	if c.Limits.MaxCount < c.Limits.DefaultCount {
		return fmt.Errorf("limits.max_count must be >= limits.default_count, got %d < %d",
			c.Limits.MaxCount, c.Limits.DefaultCount)
	}
	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	return &Config{
		Learning: c.Learning,
		Memory:   c.Memory,
		Scoring:  c.Scoring,
		Limits:   c.Limits,
	}
}

// blendWeights returns the four blend weights normalized to sum to 1.0.
func (c *Config) blendWeights() (pref, behav, ctx, novelty float64) {
	sum := c.Scoring.PreferenceWeight + c.Scoring.BehavioralWeight +
		c.Scoring.ContextualWeight + c.Scoring.NoveltyWeight
	if sum == 0 {
		return 0.25, 0.25, 0.25, 0.25
	}
	return c.Scoring.PreferenceWeight / sum,
		c.Scoring.BehavioralWeight / sum,
		c.Scoring.ContextualWeight / sum,
		c.Scoring.NoveltyWeight / sum
}
