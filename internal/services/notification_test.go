package services

import (
	"context"
	"testing"
	"time"

	"github.com/safestreets/safestreets-backend/internal/types"
)

func TestStatusChangeCreatesNotification(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	officer := env.mustOfficer(t, "officer@police.gov")
	ctx := context.Background()

	report := env.mustSubmit(t, citizen.ID, SubmitReportParams{
		ViolationType: types.ViolationSpeed,
		Latitude:      baseLat,
		Longitude:     baseLon,
		OccurredAt:    time.Now(),
	})
	if _, err := env.reviewSvc.Transition(ctx, ReviewDecision{
		ReportID:     report.ID,
		ReviewerID:   officer.ID,
		TargetStatus: types.StatusApproved,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	notifications, err := env.notification.List(ctx, citizen.ID, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Approval produces a status change and a points notification.
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
	kinds := map[string]bool{}
	for _, n := range notifications {
		kinds[n.Type] = true
		if n.ReportID == nil || *n.ReportID != report.ID {
			t.Fatalf("notification not linked to report: %+v", n)
		}
	}
	if !kinds[types.NotificationStatusChange] || !kinds[types.NotificationPointsEarned] {
		t.Fatalf("missing notification kinds: %v", kinds)
	}
}

func TestExpiredNotificationsPrunedOnList(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	ctx := context.Background()

	// One fresh, one created past its TTL.
	if _, err := env.notifRepo.Create(ctx, nil, &types.Notification{
		CitizenID: citizen.ID,
		Type:      types.NotificationSystem,
		Title:     "fresh",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}); err != nil {
		t.Fatalf("create fresh: %v", err)
	}
	if _, err := env.notifRepo.Create(ctx, nil, &types.Notification{
		CitizenID: citizen.ID,
		Type:      types.NotificationSystem,
		Title:     "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("create stale: %v", err)
	}

	notifications, err := env.notification.List(ctx, citizen.ID, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Title != "fresh" {
		t.Fatalf("expected only the fresh notification, got %+v", notifications)
	}
}

func TestMarkReadDeletes(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	ctx := context.Background()

	created, err := env.notifRepo.Create(ctx, nil, &types.Notification{
		CitizenID: citizen.ID,
		Type:      types.NotificationSystem,
		Title:     "hello",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := env.notification.MarkRead(ctx, citizen.ID, created.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	remaining, err := env.notification.List(ctx, citizen.ID, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected notification deleted on read, got %d", len(remaining))
	}
}

func TestMarkAllReadDeletesAll(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := env.notifRepo.Create(ctx, nil, &types.Notification{
			CitizenID: citizen.ID,
			Type:      types.NotificationSystem,
			Title:     "n",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	count, err := env.notification.MarkAllRead(ctx, citizen.ID)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 deleted, got %d", count)
	}
}
