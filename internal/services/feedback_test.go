package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
	"github.com/safestreets/safestreets-backend/internal/types"
)

func TestSubmitFeedbackOnReportAppendsEvent(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	ctx := context.Background()

	report := env.mustSubmit(t, citizen.ID, SubmitReportParams{
		ViolationType: types.ViolationSpeed,
		Latitude:      baseLat,
		Longitude:     baseLon,
		OccurredAt:    time.Now(),
	})

	fb, err := env.feedbackSvc.Submit(ctx, SubmitFeedbackParams{
		CitizenID:    &citizen.ID,
		ReportID:     &report.ID,
		FeedbackType: types.FeedbackReport,
		Category:     types.FeedbackCategoryComplaint,
		Title:        "Review took too long",
		Description:  "My report sat unreviewed for over a week.",
	})
	if err != nil {
		t.Fatalf("submit feedback: %v", err)
	}
	if fb.Status != types.FeedbackPending {
		t.Fatalf("expected PENDING, got %s", fb.Status)
	}
	if fb.Priority != types.FeedbackPriorityMedium {
		t.Fatalf("expected default MEDIUM priority, got %s", fb.Priority)
	}

	events, err := env.events.Timeline(ctx, report.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	last := events[len(events)-1]
	if last.EventType != types.EventFeedbackAdded {
		t.Fatalf("expected FEEDBACK_ADDED on the trail, got %s", last.EventType)
	}
	if last.ActorID == nil || *last.ActorID != citizen.ID || last.ActorRole != "CITIZEN" {
		t.Fatalf("event actor mismatch: %+v", last)
	}
}

func TestSubmitFeedbackWithoutReportLeavesNoEvent(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	ctx := context.Background()

	if _, err := env.feedbackSvc.Submit(ctx, SubmitFeedbackParams{
		CitizenID:    &citizen.ID,
		FeedbackType: types.FeedbackApp,
		Category:     types.FeedbackCategorySuggestion,
		Title:        "Dark mode please",
		Description:  "The app is blinding at night, a dark theme would help.",
	}); err != nil {
		t.Fatalf("submit feedback: %v", err)
	}

	var count int64
	if err := env.db.Model(&types.ReportEvent{}).
		Where("event_type = ?", types.EventFeedbackAdded).
		Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no trail entries for report-less feedback, got %d", count)
	}
}

func TestSubmitFeedbackValidation(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	badRating := 6

	valid := SubmitFeedbackParams{
		CitizenID:    &citizen.ID,
		FeedbackType: types.FeedbackApp,
		Category:     types.FeedbackCategoryBug,
		Title:        "Upload button broken",
		Description:  "Tapping upload does nothing on Android 14.",
	}

	cases := []struct {
		name     string
		mutate   func(p *SubmitFeedbackParams)
		wantCode string
	}{
		{
			name:     "no submitter",
			mutate:   func(p *SubmitFeedbackParams) { p.CitizenID = nil },
			wantCode: "invalid_submitter",
		},
		{
			name:     "unknown type",
			mutate:   func(p *SubmitFeedbackParams) { p.FeedbackType = "RANT" },
			wantCode: "invalid_feedback_type",
		},
		{
			name:     "unknown category",
			mutate:   func(p *SubmitFeedbackParams) { p.Category = "MISC" },
			wantCode: "invalid_feedback_category",
		},
		{
			name:     "short title",
			mutate:   func(p *SubmitFeedbackParams) { p.Title = "bug" },
			wantCode: "invalid_title",
		},
		{
			name:     "short description",
			mutate:   func(p *SubmitFeedbackParams) { p.Description = "broken" },
			wantCode: "invalid_description",
		},
		{
			name:     "rating out of range",
			mutate:   func(p *SubmitFeedbackParams) { p.Rating = &badRating },
			wantCode: "invalid_rating",
		},
		{
			name: "too many attachments",
			mutate: func(p *SubmitFeedbackParams) {
				p.Attachments = []string{"a", "b", "c", "d", "e", "f"}
			},
			wantCode: "too_many_attachments",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := valid
			tc.mutate(&params)
			_, err := env.feedbackSvc.Submit(context.Background(), params)
			var ae *apierr.Error
			if !errors.As(err, &ae) || ae.Code != tc.wantCode {
				t.Fatalf("expected %s, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestSubmitFeedbackUnknownReport(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	missing := uint(9999)

	_, err := env.feedbackSvc.Submit(context.Background(), SubmitFeedbackParams{
		CitizenID:    &citizen.ID,
		ReportID:     &missing,
		FeedbackType: types.FeedbackReport,
		Category:     types.FeedbackCategoryComplaint,
		Title:        "Wrong decision",
		Description:  "The report was rejected without explanation.",
	})
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != "not_found" {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestResolveStampsResolvedAtOnce(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	ctx := context.Background()

	fb, err := env.feedbackSvc.Submit(ctx, SubmitFeedbackParams{
		CitizenID:    &citizen.ID,
		FeedbackType: types.FeedbackService,
		Category:     types.FeedbackCategoryComplaint,
		Title:        "Helpline unreachable",
		Description:  "Called the helpline three times, no answer.",
	})
	if err != nil {
		t.Fatalf("submit feedback: %v", err)
	}

	resolved, err := env.feedbackSvc.Update(ctx, fb.ID, UpdateFeedbackParams{
		Status:          types.FeedbackResolved,
		ResolutionNotes: "Helpline staffing fixed.",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ResolvedAt == nil {
		t.Fatalf("expected ResolvedAt on first resolution")
	}
	stamp := *resolved.ResolvedAt

	// Reopen and resolve again; the original stamp survives.
	if _, err := env.feedbackSvc.Update(ctx, fb.ID, UpdateFeedbackParams{Status: types.FeedbackInReview}); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again, err := env.feedbackSvc.Update(ctx, fb.ID, UpdateFeedbackParams{Status: types.FeedbackResolved})
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if again.ResolvedAt == nil || !again.ResolvedAt.Equal(stamp) {
		t.Fatalf("ResolvedAt rewritten: %v != %v", again.ResolvedAt, stamp)
	}
}

func TestUpdateFeedbackRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.feedbackSvc.Update(context.Background(), 1, UpdateFeedbackParams{Status: "DONE"})
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != "invalid_feedback_status" {
		t.Fatalf("expected invalid_feedback_status, got %v", err)
	}
}

func TestCitizenViewHidesInternalResponses(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.mustCitizen(t, "+919999000001")
	officer := env.mustOfficer(t, "officer@police.gov")
	ctx := context.Background()

	fb, err := env.feedbackSvc.Submit(ctx, SubmitFeedbackParams{
		CitizenID:    &citizen.ID,
		FeedbackType: types.FeedbackFeature,
		Category:     types.FeedbackCategorySuggestion,
		Title:        "Export my reports",
		Description:  "Let me download my report history as a file.",
	})
	if err != nil {
		t.Fatalf("submit feedback: %v", err)
	}

	if _, err := env.feedbackSvc.Respond(ctx, fb.ID, officer.ID, "Planned for next quarter.", false); err != nil {
		t.Fatalf("public response: %v", err)
	}
	if _, err := env.feedbackSvc.Respond(ctx, fb.ID, officer.ID, "Deprioritize, low demand.", true); err != nil {
		t.Fatalf("internal response: %v", err)
	}

	mine, err := env.feedbackSvc.MyFeedback(ctx, citizen.ID, 10, 0)
	if err != nil {
		t.Fatalf("my feedback: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 feedback, got %d", len(mine))
	}
	if len(mine[0].Responses) != 1 || mine[0].Responses[0].IsInternal {
		t.Fatalf("citizen view must only carry public responses: %+v", mine[0].Responses)
	}

	full, err := env.feedbackSvc.GetByID(ctx, fb.ID, false)
	if err != nil {
		t.Fatalf("get feedback: %v", err)
	}
	if len(full.Responses) != 2 {
		t.Fatalf("police view must carry all responses, got %d", len(full.Responses))
	}
}

func TestRespondUnknownFeedback(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.feedbackSvc.Respond(context.Background(), 42, uuid.New(), "hello there", false)
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != "not_found" {
		t.Fatalf("expected not_found, got %v", err)
	}
}
