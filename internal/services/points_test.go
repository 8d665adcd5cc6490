package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
	"github.com/safestreets/safestreets-backend/internal/types"
)

func TestRedeemDebitsBalanceAndAppendsLedger(t *testing.T) {
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

	txn, err := env.points.Redeem(ctx, citizen.ID, 60, "fuel voucher")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if txn.Type != types.PointsRedeem || txn.Points != -60 {
		t.Fatalf("expected signed REDEEM delta of -60, got %+v", txn)
	}
	if txn.BalanceAfter != 90 {
		t.Fatalf("expected balance 150-60=90, got %d", txn.BalanceAfter)
	}

	updated, err := env.citizens.GetByID(ctx, nil, citizen.ID)
	if err != nil {
		t.Fatalf("reload citizen: %v", err)
	}
	if updated.TotalPoints != 90 || updated.PointsRedeemed != 60 {
		t.Fatalf("expected total=90 redeemed=60, got %+v", updated)
	}
	if updated.TotalPoints != updated.PointsEarned-updated.PointsRedeemed {
		t.Fatalf("balance identity violated: %+v", updated)
	}
}

func TestRedeemInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")

	_, err := env.points.Redeem(context.Background(), citizen.ID, 10, "voucher")
	if err == nil {
		t.Fatalf("expected redemption to fail with zero balance")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != "insufficient_points" {
		t.Fatalf("expected insufficient_points, got %v", err)
	}

	// Nothing was written.
	history, err := env.points.History(context.Background(), citizen.ID, 10, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty ledger, got %d entries", len(history))
	}
}

func TestLedgerReplayMatchesBalance(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	officer := env.mustOfficer(t, "officer@police.gov")
	ctx := context.Background()
	now := time.Now().Add(-2 * time.Hour)

	// Two approvals far apart (both first reporters), one rejection,
	// one redemption.
	for i := 0; i < 2; i++ {
		report := env.mustSubmit(t, citizen.ID, SubmitReportParams{
			ViolationType: types.ViolationSpeed,
			Latitude:      baseLat + float64(i)*0.5,
			Longitude:     baseLon,
			OccurredAt:    now.Add(time.Duration(i) * time.Hour),
		})
		if _, err := env.reviewSvc.Transition(ctx, ReviewDecision{
			ReportID:     report.ID,
			ReviewerID:   officer.ID,
			TargetStatus: types.StatusApproved,
		}); err != nil {
			t.Fatalf("approve %d: %v", i, err)
		}
	}
	rejected := env.mustSubmit(t, citizen.ID, SubmitReportParams{
		ViolationType: types.ViolationOther,
		Latitude:      baseLat - 1,
		Longitude:     baseLon,
		OccurredAt:    now,
	})
	if _, err := env.reviewSvc.Transition(ctx, ReviewDecision{
		ReportID:     rejected.ID,
		ReviewerID:   officer.ID,
		TargetStatus: types.StatusRejected,
	}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := env.points.Redeem(ctx, citizen.ID, 75, "voucher"); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	updated, err := env.citizens.GetByID(ctx, nil, citizen.ID)
	if err != nil {
		t.Fatalf("reload citizen: %v", err)
	}
	replayed, err := env.points.LedgerBalance(ctx, citizen.ID)
	if err != nil {
		t.Fatalf("ledger balance: %v", err)
	}
	if int64(updated.TotalPoints) != replayed {
		t.Fatalf("ledger replay %d != counter %d", replayed, updated.TotalPoints)
	}
	// 150 + 150 - 75
	if updated.TotalPoints != 225 {
		t.Fatalf("expected 225 points, got %d", updated.TotalPoints)
	}

	// BalanceAfter snapshots are consistent newest-first.
	history, err := env.points.History(ctx, citizen.ID, 10, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 ledger entries, got %d", len(history))
	}
	if history[0].BalanceAfter != updated.TotalPoints {
		t.Fatalf("latest snapshot %d != balance %d", history[0].BalanceAfter, updated.TotalPoints)
	}
}

func TestAwardRejectsNonPositivePoints(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")

	_, err := env.points.AwardInTx(context.Background(), nil, citizen.ID, 1, 0, "nothing")
	if err == nil {
		t.Fatalf("expected zero award to fail")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != "invalid_points" {
		t.Fatalf("expected invalid_points, got %v", err)
	}
}
