package services

import (
	"context"
	"testing"

	"github.com/safestreets/safestreets-backend/internal/types"
)

func TestUpdateProfileToggles(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCitizenService(env.citizens, newTestLogger())
	citizen := env.mustCitizen(t, "+919999000001")
	ctx := context.Background()

	anon := true
	updated, err := svc.UpdateProfile(ctx, citizen.ID, UpdateProfileParams{
		Name:            "Asha",
		City:            "Bengaluru",
		IsAnonymousMode: &anon,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Asha" || updated.City != "Bengaluru" || !updated.IsAnonymousMode {
		t.Fatalf("unexpected profile %+v", updated)
	}

	// Omitted fields stay put.
	off := false
	updated, err = svc.UpdateProfile(ctx, citizen.ID, UpdateProfileParams{NotificationsEnabled: &off})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if updated.Name != "Asha" || !updated.IsAnonymousMode || updated.NotificationsEnabled {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}
}

func TestLeaderboardExcludesAnonymous(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCitizenService(env.citizens, newTestLogger())
	ctx := context.Background()

	visible := env.mustCitizen(t, "+919999000001")
	hidden, err := env.citizens.Create(ctx, nil, &types.Citizen{
		Phone:           "+919999000002",
		Name:            "Hidden",
		IsAnonymousMode: true,
		TotalPoints:     999,
	})
	if err != nil {
		t.Fatalf("create hidden citizen: %v", err)
	}

	board, err := svc.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	for _, entry := range board {
		if entry.ID == hidden.ID {
			t.Fatalf("anonymous citizen surfaced on the leaderboard")
		}
	}
	found := false
	for _, entry := range board {
		if entry.ID == visible.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected visible citizen on the leaderboard")
	}
}
