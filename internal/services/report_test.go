package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
	"github.com/safestreets/safestreets-backend/internal/types"
)

func TestSubmitCreatesReportAndEvent(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	ctx := context.Background()

	report := env.mustSubmit(t, citizen.ID, SubmitReportParams{
		ViolationType: types.ViolationSpeed,
		Description:   "overspeeding near the school zone",
		VehicleNumber: "KA01AB1234",
		Latitude:      baseLat,
		Longitude:     baseLon,
		Address:       "MG Road",
		OccurredAt:    time.Now(),
		MediaURLs:     []string{"https://cdn.example.com/a.jpg"},
	})

	if report.Status != types.StatusPending {
		t.Fatalf("new reports start PENDING, got %s", report.Status)
	}
	events, err := env.events.Timeline(ctx, report.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(events) != 1 || events[0].EventType != types.EventReportSubmitted {
		t.Fatalf("expected exactly one REPORT_SUBMITTED event, got %+v", events)
	}

	updated, err := env.citizens.GetByID(ctx, nil, citizen.ID)
	if err != nil {
		t.Fatalf("reload citizen: %v", err)
	}
	if updated.ReportsCount != 1 {
		t.Fatalf("expected reports count 1, got %d", updated.ReportsCount)
	}
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	ctx := context.Background()

	cases := []struct {
		name   string
		params SubmitReportParams
		code   string
	}{
		{
			name: "unknown violation type",
			params: SubmitReportParams{
				ViolationType: "JAYWALKING",
				Latitude:      baseLat,
				Longitude:     baseLon,
			},
			code: "invalid_violation_type",
		},
		{
			name: "latitude out of range",
			params: SubmitReportParams{
				ViolationType: types.ViolationSpeed,
				Latitude:      91,
				Longitude:     baseLon,
			},
			code: "invalid_coordinates",
		},
		{
			name: "longitude out of range",
			params: SubmitReportParams{
				ViolationType: types.ViolationSpeed,
				Latitude:      baseLat,
				Longitude:     181,
			},
			code: "invalid_coordinates",
		},
		{
			name: "future incident time",
			params: SubmitReportParams{
				ViolationType: types.ViolationSpeed,
				Latitude:      baseLat,
				Longitude:     baseLon,
				OccurredAt:    time.Now().Add(time.Hour),
			},
			code: "invalid_timestamp",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.params.CitizenID = citizen.ID
			_, err := env.reportSvc.Submit(ctx, tc.params)
			if err == nil {
				t.Fatalf("expected submission to fail")
			}
			var ae *apierr.Error
			if !errors.As(err, &ae) || ae.Code != tc.code {
				t.Fatalf("expected code %q, got %v", tc.code, err)
			}
		})
	}
}

func TestSubmitUnknownCitizen(t *testing.T) {
	env := newTestEnv(t)
	ghost := env.mustCitizen(t, "+919999000001")

	// Use a fresh env's citizen id against another database to get a
	// guaranteed miss.
	other := newTestEnv(t)
	_, err := other.reportSvc.Submit(context.Background(), SubmitReportParams{
		CitizenID:     ghost.ID,
		ViolationType: types.ViolationSpeed,
		Latitude:      baseLat,
		Longitude:     baseLon,
	})
	if err == nil {
		t.Fatalf("expected not-found for unknown citizen")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestSubmitDailyCap(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	log := newTestLogger()
	capped := NewReportService(env.db, env.reports, env.citizens, env.duplicates, env.events,
		ReportConfig{MaxReportsPerDay: 2}, log)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := capped.Submit(ctx, SubmitReportParams{
			CitizenID:     citizen.ID,
			ViolationType: types.ViolationNoParking,
			Latitude:      baseLat + float64(i)*0.01,
			Longitude:     baseLon,
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	_, err := capped.Submit(ctx, SubmitReportParams{
		CitizenID:     citizen.ID,
		ViolationType: types.ViolationNoParking,
		Latitude:      baseLat,
		Longitude:     baseLon,
	})
	if err == nil {
		t.Fatalf("expected daily cap to reject third submission")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != 429 {
		t.Fatalf("expected 429, got %v", err)
	}
}

func TestAttachMediaAppendsAndLogsEvent(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	ctx := context.Background()

	report := env.mustSubmit(t, citizen.ID, SubmitReportParams{
		ViolationType: types.ViolationSpeed,
		Latitude:      baseLat,
		Longitude:     baseLon,
		MediaURLs:     []string{"https://cdn.example.com/a.jpg"},
	})

	updated, err := env.reportSvc.AttachMedia(ctx, citizen.ID, report.ID, []string{"https://cdn.example.com/b.jpg"})
	if err != nil {
		t.Fatalf("attach media: %v", err)
	}
	if updated.MediaURLs == nil {
		t.Fatalf("expected media urls on report")
	}

	events, err := env.events.Timeline(ctx, report.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	last := events[len(events)-1]
	if last.EventType != types.EventMediaUploaded {
		t.Fatalf("expected MEDIA_UPLOADED event, got %s", last.EventType)
	}
}

func TestAttachMediaForeignCitizenForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.mustCitizen(t, "+919999000001")
	intruder := env.mustCitizen(t, "+919999000002")

	report := env.mustSubmit(t, owner.ID, SubmitReportParams{
		ViolationType: types.ViolationSpeed,
		Latitude:      baseLat,
		Longitude:     baseLon,
	})
	_, err := env.reportSvc.AttachMedia(context.Background(), intruder.ID, report.ID, []string{"https://cdn.example.com/x.jpg"})
	if err == nil {
		t.Fatalf("expected forbidden")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != 403 {
		t.Fatalf("expected 403, got %v", err)
	}
}
