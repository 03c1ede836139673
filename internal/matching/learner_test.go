// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package matching

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestLearner(t *testing.T) (*Learner, *ContextStore) {
	t.Helper()
	store := newTestContextStore()
	return NewLearner(store, DefaultConfig(), store.logger), store
}

func swipe(userID string, typ InteractionType, exp Experience) *Interaction {
	return &Interaction{
		UserID:       userID,
		SessionID:    "sess-1",
		Type:         typ,
		ExperienceID: exp.ID,
		Context:      InteractionContext{Experience: exp},
	}
}

var potteryExp = Experience{
	ID:               "exp-pottery-1",
	Craft:            "pottery",
	Location:         "Fes",
	Price:            80,
	ExperienceStyles: []string{"hands-on"},
	QuickMoods:       []string{"creative"},
}

// freshRate is the learning rate for a brand-new user at run position 0:
// base 0.1 x confidence 0.5 x energy 0.7.
const freshRate = 0.1 * 0.5 * 0.7

func TestRecordInteraction_SwipeRight(t *testing.T) {
	learner, store := newTestLearner(t)
	ctx := context.Background()
	store.InitializeUserContext(ctx, "user-1", "sess-1")

	uc, err := learner.RecordInteraction(ctx, swipe("user-1", InteractionSwipeRight, potteryExp))
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}

	if !almostEqual(uc.Preferences.CraftAffinity["pottery"], freshRate) {
		t.Errorf("pottery affinity = %f, want %f", uc.Preferences.CraftAffinity["pottery"], freshRate)
	}
	if !almostEqual(uc.Preferences.ExperienceStyle["hands-on"], freshRate) {
		t.Errorf("hands-on affinity = %f, want %f", uc.Preferences.ExperienceStyle["hands-on"], freshRate)
	}
	if !almostEqual(uc.Preferences.MoodAlignment["creative"], freshRate) {
		t.Errorf("creative alignment = %f, want %f", uc.Preferences.MoodAlignment["creative"], freshRate)
	}
	if uc.CurrentSession.InteractionCount != 1 {
		t.Errorf("InteractionCount = %d, want 1", uc.CurrentSession.InteractionCount)
	}
	if len(uc.ConversationMemory) != 1 {
		t.Fatalf("ConversationMemory has %d entries, want 1", len(uc.ConversationMemory))
	}
	entry := uc.ConversationMemory[0]
	if entry.Content != "liked a pottery experience in Fes" {
		t.Errorf("memory content = %q", entry.Content)
	}
	if !almostEqual(entry.Confidence, 0.9) {
		t.Errorf("memory confidence = %f, want 0.9", entry.Confidence)
	}
	if !almostEqual(entry.RelevanceDecay, 1.0) {
		t.Errorf("memory decay = %f, want 1.0", entry.RelevanceDecay)
	}
}

func TestRecordInteraction_SwipeLeft(t *testing.T) {
	learner, store := newTestLearner(t)
	ctx := context.Background()
	store.InitializeUserContext(ctx, "user-1", "sess-1")

	uc, err := learner.RecordInteraction(ctx, swipe("user-1", InteractionSwipeLeft, potteryExp))
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}

	if !almostEqual(uc.Preferences.CraftAffinity["pottery"], -freshRate) {
		t.Errorf("pottery affinity = %f, want %f", uc.Preferences.CraftAffinity["pottery"], -freshRate)
	}
	if !almostEqual(uc.Preferences.ExperienceStyle["hands-on"], -0.5*freshRate) {
		t.Errorf("hands-on affinity = %f, want %f", uc.Preferences.ExperienceStyle["hands-on"], -0.5*freshRate)
	}
	if len(uc.Preferences.MoodAlignment) != 0 {
		t.Errorf("MoodAlignment has %d entries, want none on swipe_left", len(uc.Preferences.MoodAlignment))
	}
}

func TestRecordInteraction_TypeMultipliers(t *testing.T) {
	tests := []struct {
		name string
		typ  InteractionType
		want float64
	}{
		{"match celebration doubles the update", InteractionMatchCelebration, 2 * freshRate},
		{"booking intent triples the update", InteractionBookingIntent, 3 * freshRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			learner, store := newTestLearner(t)
			ctx := context.Background()
			store.InitializeUserContext(ctx, "user-1", "sess-1")

			uc, err := learner.RecordInteraction(ctx, swipe("user-1", tt.typ, potteryExp))
			if err != nil {
				t.Fatalf("RecordInteraction() error = %v", err)
			}
			if !almostEqual(uc.Preferences.CraftAffinity["pottery"], tt.want) {
				t.Errorf("pottery affinity = %f, want %f", uc.Preferences.CraftAffinity["pottery"], tt.want)
			}
		})
	}
}

func TestRecordInteraction_TimeSpent(t *testing.T) {
	t.Run("above dwell threshold", func(t *testing.T) {
		learner, store := newTestLearner(t)
		ctx := context.Background()
		store.InitializeUserContext(ctx, "user-1", "sess-1")

		event := swipe("user-1", InteractionTimeSpent, potteryExp)
		event.Metadata.SecondsSpent = 25

		uc, err := learner.RecordInteraction(ctx, event)
		if err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
		if !almostEqual(uc.Preferences.CraftAffinity["pottery"], 0.5*freshRate) {
			t.Errorf("pottery affinity = %f, want %f", uc.Preferences.CraftAffinity["pottery"], 0.5*freshRate)
		}
	})

	t.Run("below dwell threshold leaves preferences alone", func(t *testing.T) {
		learner, store := newTestLearner(t)
		ctx := context.Background()
		store.InitializeUserContext(ctx, "user-1", "sess-1")

		event := swipe("user-1", InteractionTimeSpent, potteryExp)
		event.Metadata.SecondsSpent = 3

		uc, err := learner.RecordInteraction(ctx, event)
		if err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
		if len(uc.Preferences.CraftAffinity) != 0 {
			t.Errorf("CraftAffinity = %v, want empty", uc.Preferences.CraftAffinity)
		}
		if len(uc.ConversationMemory) != 1 {
			t.Errorf("ConversationMemory has %d entries, want 1", len(uc.ConversationMemory))
		}
	})
}

func TestRecordInteraction_MemoryOnlyTypes(t *testing.T) {
	for _, typ := range []InteractionType{InteractionExperienceView, InteractionPriceReaction} {
		t.Run(string(typ), func(t *testing.T) {
			learner, store := newTestLearner(t)
			ctx := context.Background()
			store.InitializeUserContext(ctx, "user-1", "sess-1")

			uc, err := learner.RecordInteraction(ctx, swipe("user-1", typ, potteryExp))
			if err != nil {
				t.Fatalf("RecordInteraction() error = %v", err)
			}
			if len(uc.Preferences.CraftAffinity) != 0 {
				t.Errorf("CraftAffinity = %v, want empty for memory-only type", uc.Preferences.CraftAffinity)
			}
			if len(uc.ConversationMemory) != 1 {
				t.Errorf("ConversationMemory has %d entries, want 1", len(uc.ConversationMemory))
			}
		})
	}
}

func TestRecordInteraction_PriceToleranceNudge(t *testing.T) {
	learner, store := newTestLearner(t)
	ctx := context.Background()
	store.InitializeUserContext(ctx, "user-1", "sess-1")

	// Price above 2 x sensitivity x 100 = 100 raises tolerance.
	expensive := potteryExp
	expensive.Price = 150

	uc, err := learner.RecordInteraction(ctx, swipe("user-1", InteractionSwipeRight, expensive))
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	want := 0.5 + 0.5*freshRate
	if !almostEqual(uc.Preferences.PriceSensitivity, want) {
		t.Errorf("PriceSensitivity = %f, want %f", uc.Preferences.PriceSensitivity, want)
	}
}

func TestRecordInteraction_SequenceDamping(t *testing.T) {
	t.Run("later run positions learn less", func(t *testing.T) {
		learner, store := newTestLearner(t)
		ctx := context.Background()
		store.InitializeUserContext(ctx, "user-1", "sess-1")

		event := swipe("user-1", InteractionSwipeRight, potteryExp)
		event.Context.SwipeRunPosition = 4

		uc, err := learner.RecordInteraction(ctx, event)
		if err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
		want := freshRate * (1 - 0.05*4)
		if !almostEqual(uc.Preferences.CraftAffinity["pottery"], want) {
			t.Errorf("pottery affinity = %f, want %f", uc.Preferences.CraftAffinity["pottery"], want)
		}
	})

	t.Run("damping never drops below the floor", func(t *testing.T) {
		learner, store := newTestLearner(t)
		ctx := context.Background()
		store.InitializeUserContext(ctx, "user-1", "sess-1")

		event := swipe("user-1", InteractionSwipeRight, potteryExp)
		event.Context.SwipeRunPosition = 50

		uc, err := learner.RecordInteraction(ctx, event)
		if err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
		want := freshRate * 0.5
		if !almostEqual(uc.Preferences.CraftAffinity["pottery"], want) {
			t.Errorf("pottery affinity = %f, want %f", uc.Preferences.CraftAffinity["pottery"], want)
		}
	})
}

func TestRecordInteraction_AffinityClamped(t *testing.T) {
	learner, store := newTestLearner(t)
	ctx := context.Background()
	store.InitializeUserContext(ctx, "user-1", "sess-1")

	for i := 0; i < 60; i++ {
		if _, err := learner.RecordInteraction(ctx, swipe("user-1", InteractionBookingIntent, potteryExp)); err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
	}

	uc, ok := store.Load(ctx, "user-1")
	if !ok {
		t.Fatal("Load() ok = false")
	}
	if uc.Preferences.CraftAffinity["pottery"] > 1 {
		t.Errorf("pottery affinity = %f, want <= 1", uc.Preferences.CraftAffinity["pottery"])
	}
	if !almostEqual(uc.Preferences.CraftAffinity["pottery"], 1) {
		t.Errorf("pottery affinity = %f, want saturated at 1", uc.Preferences.CraftAffinity["pottery"])
	}
	if len(uc.ConversationMemory) > 50 {
		t.Errorf("ConversationMemory has %d entries, want <= 50", len(uc.ConversationMemory))
	}
	if len(uc.ConversationMemory) != 50 {
		t.Errorf("ConversationMemory has %d entries, want exactly 50 after 60 interactions", len(uc.ConversationMemory))
	}
}

func TestRecordInteraction_MemoryDecayAndPurge(t *testing.T) {
	learner, store := newTestLearner(t)
	ctx := context.Background()

	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(fixedClock(t0))
	learner.SetClock(fixedClock(t0))
	store.InitializeUserContext(ctx, "user-1", "sess-1")

	if _, err := learner.RecordInteraction(ctx, swipe("user-1", InteractionSwipeRight, potteryExp)); err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}

	t15 := t0.Add(15 * 24 * time.Hour)
	learner.SetClock(fixedClock(t15))
	uc, err := learner.RecordInteraction(ctx, swipe("user-1", InteractionSwipeLeft, potteryExp))
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	if len(uc.ConversationMemory) != 2 {
		t.Fatalf("ConversationMemory has %d entries, want 2", len(uc.ConversationMemory))
	}
	if !almostEqual(uc.ConversationMemory[0].RelevanceDecay, 0.5) {
		t.Errorf("15-day-old entry decay = %f, want 0.5", uc.ConversationMemory[0].RelevanceDecay)
	}

	t40 := t0.Add(40 * 24 * time.Hour)
	learner.SetClock(fixedClock(t40))
	uc, err = learner.RecordInteraction(ctx, swipe("user-1", InteractionSwipeRight, potteryExp))
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}

	// The 40-day-old entry decays to zero and is purged. The 25-day-old
	// entry survives just above the purge threshold.
	if len(uc.ConversationMemory) != 2 {
		t.Fatalf("ConversationMemory has %d entries, want 2 after purge", len(uc.ConversationMemory))
	}
	for _, entry := range uc.ConversationMemory {
		if entry.RelevanceDecay <= 0.1 {
			t.Errorf("surviving entry decay = %f, want > 0.1", entry.RelevanceDecay)
		}
	}
}

func TestRecordInteraction_SwipeVelocity(t *testing.T) {
	learner, store := newTestLearner(t)
	ctx := context.Background()
	store.InitializeUserContext(ctx, "user-1", "sess-1")

	rapid := swipe("user-1", InteractionSwipeRight, potteryExp)
	rapid.Metadata.SecondsSinceLast = 1

	uc, err := learner.RecordInteraction(ctx, rapid)
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	want := 0.5 + 0.3*(1-0.5)
	if !almostEqual(uc.Patterns.SwipeVelocity, want) {
		t.Errorf("SwipeVelocity = %f, want %f after rapid swipe", uc.Patterns.SwipeVelocity, want)
	}

	slow := swipe("user-1", InteractionSwipeLeft, potteryExp)
	slow.Metadata.SecondsSinceLast = 10

	uc, err = learner.RecordInteraction(ctx, slow)
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	want = want + 0.3*(0-want)
	if !almostEqual(uc.Patterns.SwipeVelocity, want) {
		t.Errorf("SwipeVelocity = %f, want %f after slow swipe", uc.Patterns.SwipeVelocity, want)
	}

	unknown := swipe("user-1", InteractionSwipeRight, potteryExp)
	uc, err = learner.RecordInteraction(ctx, unknown)
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	if !almostEqual(uc.Patterns.SwipeVelocity, want) {
		t.Errorf("SwipeVelocity = %f, want unchanged %f when gap unknown", uc.Patterns.SwipeVelocity, want)
	}
}

func TestRecordInteraction_TimeOfDayActivity(t *testing.T) {
	learner, store := newTestLearner(t)
	ctx := context.Background()
	store.InitializeUserContext(ctx, "user-1", "sess-1")

	event := swipe("user-1", InteractionSwipeRight, potteryExp)
	event.Context.TimeOfDay = "evening"

	uc, err := learner.RecordInteraction(ctx, event)
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	if !almostEqual(uc.Patterns.TimeOfDayActivity["evening"], 0.1) {
		t.Errorf("evening activity = %f, want 0.1", uc.Patterns.TimeOfDayActivity["evening"])
	}
}

func TestRecordInteraction_Errors(t *testing.T) {
	learner, store := newTestLearner(t)
	ctx := context.Background()
	store.InitializeUserContext(ctx, "user-1", "sess-1")

	t.Run("unknown user", func(t *testing.T) {
		_, err := learner.RecordInteraction(ctx, swipe("ghost", InteractionSwipeRight, potteryExp))
		if !errors.Is(err, ErrContextNotFound) {
			t.Errorf("error = %v, want ErrContextNotFound", err)
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := learner.RecordInteraction(ctx, swipe("user-1", InteractionType("teleport"), potteryExp))
		if !errors.Is(err, ErrInvalidInteraction) {
			t.Errorf("error = %v, want ErrInvalidInteraction", err)
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		_, err := learner.RecordInteraction(ctx, swipe("", InteractionSwipeRight, potteryExp))
		if !errors.Is(err, ErrInvalidInteraction) {
			t.Errorf("error = %v, want ErrInvalidInteraction", err)
		}
	})
}
