package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

func newTestFines(env *testEnv) FineService {
	log := newTestLogger()
	return NewFineService(env.db, repos.NewFineRepo(env.db, log), env.reports, log)
}

func TestSuggestedFineSchedule(t *testing.T) {
	cases := []struct {
		violationType, severity string
		want                    int
	}{
		{types.ViolationSpeed, types.SeverityMinor, 1000},
		{types.ViolationSpeed, types.SeverityCritical, 2000},
		{types.ViolationDrunkDriving, types.SeverityCritical, 10000},
		{types.ViolationNoParking, types.SeverityMinor, 300},
		// Empty severity defaults to MINOR; unknown types fall back to OTHERS.
		{types.ViolationWrongSide, "", 2000},
		{"SOMETHING_ELSE", types.SeverityMajor, 750},
	}
	for _, tc := range cases {
		if got := SuggestedFine(tc.violationType, tc.severity); got != tc.want {
			t.Fatalf("SuggestedFine(%s, %s) = %d, want %d", tc.violationType, tc.severity, got, tc.want)
		}
	}
}

func TestIssueFineUsesScheduleWhenAmountOmitted(t *testing.T) {
	env := newTestEnv(t)
	fines := newTestFines(env)
	citizen := env.mustCitizen(t, "+919999000001")
	officer := env.mustOfficer(t, "officer@police.gov")
	ctx := context.Background()

	report := env.mustSubmit(t, citizen.ID, SubmitReportParams{
		ViolationType: types.ViolationDrunkDriving,
		VehicleNumber: "KA01AB1234",
		Latitude:      baseLat,
		Longitude:     baseLon,
		OccurredAt:    time.Now(),
	})
	if _, err := env.reviewSvc.Transition(ctx, ReviewDecision{
		ReportID:     report.ID,
		ReviewerID:   officer.ID,
		TargetStatus: types.StatusApproved,
		Severity:     types.SeverityCritical,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	fine, err := fines.Issue(ctx, officer.ID, report.ID, 0, "scheduled amount")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if fine.Amount != 10000 {
		t.Fatalf("expected scheduled amount 10000, got %d", fine.Amount)
	}
	if fine.Status != types.FineIssued || fine.VehicleNumber != "KA01AB1234" {
		t.Fatalf("unexpected fine %+v", fine)
	}

	reloaded, err := env.reports.GetByID(ctx, nil, report.ID)
	if err != nil {
		t.Fatalf("reload report: %v", err)
	}
	if !reloaded.ChallanIssued || reloaded.ChallanNumber == "" {
		t.Fatalf("expected challan marked on report, got issued=%v number=%q",
			reloaded.ChallanIssued, reloaded.ChallanNumber)
	}
}

func TestIssueFineExplicitAmountWins(t *testing.T) {
	env := newTestEnv(t)
	fines := newTestFines(env)
	citizen := env.mustCitizen(t, "+919999000001")
	officer := env.mustOfficer(t, "officer@police.gov")
	ctx := context.Background()

	report := env.mustSubmit(t, citizen.ID, SubmitReportParams{
		ViolationType: types.ViolationSpeed,
		VehicleNumber: "KA01AB1234",
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

	fine, err := fines.Issue(ctx, officer.ID, report.ID, 2500, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if fine.Amount != 2500 {
		t.Fatalf("expected explicit amount 2500, got %d", fine.Amount)
	}
}

func TestIssueFineRequiresApprovedReport(t *testing.T) {
	env := newTestEnv(t)
	fines := newTestFines(env)
	citizen := env.mustCitizen(t, "+919999000001")
	officer := env.mustOfficer(t, "officer@police.gov")
	ctx := context.Background()

	report := env.mustSubmit(t, citizen.ID, SubmitReportParams{
		ViolationType: types.ViolationSpeed,
		VehicleNumber: "KA01AB1234",
		Latitude:      baseLat,
		Longitude:     baseLon,
		OccurredAt:    time.Now(),
	})

	_, err := fines.Issue(ctx, officer.ID, report.ID, 0, "")
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != 409 || ae.Code != "report_not_approved" {
		t.Fatalf("expected 409 report_not_approved, got %v", err)
	}
}

func TestFineSettlement(t *testing.T) {
	env := newTestEnv(t)
	fines := newTestFines(env)
	citizen := env.mustCitizen(t, "+919999000001")
	officer := env.mustOfficer(t, "officer@police.gov")
	ctx := context.Background()

	report := env.mustSubmit(t, citizen.ID, SubmitReportParams{
		ViolationType: types.ViolationNoParking,
		VehicleNumber: "KA01AB1234",
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
	fine, err := fines.Issue(ctx, officer.ID, report.ID, 0, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := fines.SetStatus(ctx, fine.ID, "CANCELLED"); err == nil {
		t.Fatalf("expected unknown settlement status to be rejected")
	}
	if err := fines.SetStatus(ctx, fine.ID, types.FinePaid); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	listed, err := fines.ListByVehicle(ctx, "KA01AB1234")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Status != types.FinePaid {
		t.Fatalf("expected one PAID fine, got %+v", listed)
	}
}
