// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

// Package catalog supplies the candidate experiences the matching engine
// scores. Providers return a snapshot of the current catalog; callers must
// not mutate the returned slice.
package catalog

import (
	"context"
	"errors"

	"github.com/medinamatch/medinamatch/internal/matching"
)

// ErrUnavailable is returned when the catalog cannot be fetched and no
// cached snapshot exists.
var ErrUnavailable = errors.New("catalog: unavailable")

// Provider supplies candidate experiences for scoring.
type Provider interface {
	// Experiences returns the current candidate set.
	Experiences(ctx context.Context) ([]matching.Experience, error)
}

// StaticProvider serves a fixed in-process candidate set. It backs the
// default deployment and tests; no upstream service is involved.
type StaticProvider struct {
	experiences []matching.Experience
}

// NewStaticProvider creates a provider over the given experiences. A nil or
// empty slice falls back to the built-in seed catalog.
func NewStaticProvider(experiences []matching.Experience) *StaticProvider {
	if len(experiences) == 0 {
		experiences = SeedExperiences()
	}
	return &StaticProvider{experiences: experiences}
}

// Experiences returns a copy of the static candidate set.
func (p *StaticProvider) Experiences(_ context.Context) ([]matching.Experience, error) {
	out := make([]matching.Experience, len(p.experiences))
	copy(out, p.experiences)
	return out, nil
}

// SeedExperiences returns the built-in artisan experience catalog used when
// no upstream catalog is configured.
func SeedExperiences() []matching.Experience {
	return []matching.Experience{
		{
			ID:               "exp-fes-pottery-01",
			Craft:            "pottery",
			Location:         "Fes",
			Price:            85,
			DurationHours:    3,
			ArtisanAge:       52,
			ExperienceStyles: []string{"hands-on"},
			QuickMoods:       []string{"creative", "patient"},
			Tags:             []string{"ceramics", "clay", "medina"},
		},
		{
			ID:               "exp-fes-zellige-01",
			Craft:            "zellige",
			Location:         "Fes",
			Price:            140,
			DurationHours:    4,
			ArtisanAge:       61,
			ExperienceStyles: []string{"demonstration", "hands-on"},
			QuickMoods:       []string{"focused"},
			Tags:             []string{"tilework", "geometry", "heritage"},
		},
		{
			ID:               "exp-marrakech-leather-01",
			Craft:            "leather",
			Location:         "Marrakech",
			Price:            95,
			DurationHours:    2.5,
			ArtisanAge:       44,
			ExperienceStyles: []string{"workshop-tour"},
			QuickMoods:       []string{"curious"},
			Tags:             []string{"tannery", "souk"},
		},
		{
			ID:               "exp-marrakech-metal-01",
			Craft:            "metalwork",
			Location:         "Marrakech",
			Price:            110,
			DurationHours:    3,
			ArtisanAge:       38,
			ExperienceStyles: []string{"hands-on"},
			QuickMoods:       []string{"adventurous"},
			Tags:             []string{"brass", "lanterns"},
		},
		{
			ID:               "exp-chefchaouen-weaving-01",
			Craft:            "weaving",
			Location:         "Chefchaouen",
			Price:            70,
			DurationHours:    2,
			ArtisanAge:       57,
			ExperienceStyles: []string{"hands-on", "demonstration"},
			QuickMoods:       []string{"calm", "patient"},
			Tags:             []string{"wool", "looms", "mountain"},
		},
		{
			ID:               "exp-essaouira-wood-01",
			Craft:            "woodwork",
			Location:         "Essaouira",
			Price:            120,
			DurationHours:    3.5,
			ArtisanAge:       49,
			ExperienceStyles: []string{"hands-on"},
			QuickMoods:       []string{"creative", "focused"},
			Tags:             []string{"thuya", "marquetry", "coastal"},
		},
		{
			ID:               "exp-rabat-carpet-01",
			Craft:            "carpets",
			Location:         "Rabat",
			Price:            160,
			DurationHours:    4,
			ArtisanAge:       63,
			ExperienceStyles: []string{"demonstration"},
			QuickMoods:       []string{"patient"},
			Tags:             []string{"knots", "wool", "heritage"},
		},
		{
			ID:               "exp-tetouan-calligraphy-01",
			Craft:            "calligraphy",
			Location:         "Tetouan",
			Price:            60,
			DurationHours:    1.5,
			ArtisanAge:       35,
			ExperienceStyles: []string{"hands-on"},
			QuickMoods:       []string{"calm", "creative"},
			Tags:             []string{"ink", "arabic-script"},
		},
	}
}
