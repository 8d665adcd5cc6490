package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

const maxFeedbackAttachments = 5

// SubmitFeedbackParams carries one feedback submission. Exactly one of
// CitizenID and UserID must be set.
type SubmitFeedbackParams struct {
	CitizenID    *uuid.UUID
	UserID       *uuid.UUID
	ReportID     *uint
	FeedbackType string
	Category     string
	Title        string
	Description  string
	Rating       *int
	Priority     string
	IsAnonymous  bool
	ContactEmail string
	ContactPhone string
	Attachments  []string
}

// UpdateFeedbackParams holds the fields a reviewing officer may change.
// Nil or empty fields are left untouched.
type UpdateFeedbackParams struct {
	Status          string
	Priority        string
	AssignedToID    *uuid.UUID
	ResolutionNotes string
}

type FeedbackService interface {
	Submit(ctx context.Context, params SubmitFeedbackParams) (*types.Feedback, error)
	GetByID(ctx context.Context, id uint, publicOnly bool) (*types.Feedback, error)
	List(ctx context.Context, filter repos.FeedbackFilter) ([]*types.Feedback, error)
	// MyFeedback lists a citizen's own submissions with internal
	// responses stripped.
	MyFeedback(ctx context.Context, citizenID uuid.UUID, limit, offset int) ([]*types.Feedback, error)
	Update(ctx context.Context, id uint, params UpdateFeedbackParams) (*types.Feedback, error)
	Respond(ctx context.Context, feedbackID uint, responderID uuid.UUID, message string, isInternal bool) (*types.FeedbackResponse, error)
}

type feedbackService struct {
	db           *gorm.DB
	feedbackRepo repos.FeedbackRepo
	reportRepo   repos.ViolationReportRepo
	events       ReportEventService
	log          *logger.Logger
}

func NewFeedbackService(
	db *gorm.DB,
	feedbackRepo repos.FeedbackRepo,
	reportRepo repos.ViolationReportRepo,
	events ReportEventService,
	baseLog *logger.Logger,
) FeedbackService {
	return &feedbackService{
		db:           db,
		feedbackRepo: feedbackRepo,
		reportRepo:   reportRepo,
		events:       events,
		log:          baseLog.With("service", "FeedbackService"),
	}
}

// Submit validates and stores one feedback. When it references a
// violation report, a FEEDBACK_ADDED entry is appended to that report's
// event trail in the same transaction.
func (s *feedbackService) Submit(ctx context.Context, params SubmitFeedbackParams) (*types.Feedback, error) {
	if err := validateFeedback(params); err != nil {
		return nil, err
	}
	if params.Priority == "" {
		params.Priority = types.FeedbackPriorityMedium
	}

	fb := &types.Feedback{
		CitizenID:    params.CitizenID,
		UserID:       params.UserID,
		ReportID:     params.ReportID,
		FeedbackType: params.FeedbackType,
		Category:     params.Category,
		Title:        params.Title,
		Description:  params.Description,
		Rating:       params.Rating,
		Priority:     params.Priority,
		Status:       types.FeedbackPending,
		IsAnonymous:  params.IsAnonymous,
		ContactEmail: params.ContactEmail,
		ContactPhone: params.ContactPhone,
	}
	if len(params.Attachments) > 0 {
		raw, err := json.Marshal(params.Attachments)
		if err != nil {
			return nil, err
		}
		fb.Attachments = datatypes.JSON(raw)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if params.ReportID != nil {
			if _, err := s.reportRepo.GetByID(ctx, tx, *params.ReportID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierr.NotFound("report")
				}
				return err
			}
		}
		if _, err := s.feedbackRepo.Create(ctx, tx, fb); err != nil {
			return err
		}
		if params.ReportID != nil {
			var actorRole string
			switch {
			case params.CitizenID != nil:
				actorRole = "CITIZEN"
			case params.UserID != nil:
				actorRole = "POLICE"
			}
			actorID := params.CitizenID
			if actorID == nil {
				actorID = params.UserID
			}
			if _, err := s.events.Log(ctx, tx, LogEventParams{
				ReportID:    *params.ReportID,
				EventType:   types.EventFeedbackAdded,
				Title:       "Feedback added",
				Description: fb.Title,
				Metadata: map[string]interface{}{
					"feedback_id":   fb.ID,
					"feedback_type": fb.FeedbackType,
					"category":      fb.Category,
				},
				ActorID:   actorID,
				ActorRole: actorRole,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("feedback submitted",
		"feedback_id", fb.ID,
		"type", fb.FeedbackType,
		"category", fb.Category,
	)
	return fb, nil
}

func (s *feedbackService) GetByID(ctx context.Context, id uint, publicOnly bool) (*types.Feedback, error) {
	fb, err := s.feedbackRepo.GetByID(ctx, nil, id, publicOnly)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("feedback")
		}
		return nil, err
	}
	return fb, nil
}

func (s *feedbackService) List(ctx context.Context, filter repos.FeedbackFilter) ([]*types.Feedback, error) {
	return s.feedbackRepo.List(ctx, nil, filter, false)
}

func (s *feedbackService) MyFeedback(ctx context.Context, citizenID uuid.UUID, limit, offset int) ([]*types.Feedback, error) {
	return s.feedbackRepo.List(ctx, nil, repos.FeedbackFilter{
		CitizenID: &citizenID,
		Limit:     limit,
		Offset:    offset,
	}, true)
}

// Update applies a reviewer's changes. ResolvedAt is stamped the first
// time the status reaches RESOLVED and never overwritten after.
func (s *feedbackService) Update(ctx context.Context, id uint, params UpdateFeedbackParams) (*types.Feedback, error) {
	if params.Status != "" && !types.ValidFeedbackStatus(params.Status) {
		return nil, apierr.BadRequest("invalid_feedback_status", fmt.Errorf("unknown feedback status %q", params.Status))
	}
	if params.Priority != "" && !types.ValidFeedbackPriority(params.Priority) {
		return nil, apierr.BadRequest("invalid_feedback_priority", fmt.Errorf("unknown feedback priority %q", params.Priority))
	}

	var fb *types.Feedback
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		fb, err = s.feedbackRepo.GetByID(ctx, tx, id, false)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("feedback")
			}
			return err
		}
		if params.Status != "" {
			if params.Status == types.FeedbackResolved && fb.ResolvedAt == nil {
				now := time.Now().UTC()
				fb.ResolvedAt = &now
			}
			fb.Status = params.Status
		}
		if params.Priority != "" {
			fb.Priority = params.Priority
		}
		if params.AssignedToID != nil {
			fb.AssignedToID = params.AssignedToID
		}
		if params.ResolutionNotes != "" {
			fb.ResolutionNotes = params.ResolutionNotes
		}
		fb, err = s.feedbackRepo.Update(ctx, tx, fb)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fb, nil
}

func (s *feedbackService) Respond(ctx context.Context, feedbackID uint, responderID uuid.UUID, message string, isInternal bool) (*types.FeedbackResponse, error) {
	if l := len(message); l < 1 || l > 1000 {
		return nil, apierr.BadRequest("invalid_message", fmt.Errorf("message must be 1-1000 characters, got %d", l))
	}
	var resp *types.FeedbackResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.feedbackRepo.GetByID(ctx, tx, feedbackID, false); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("feedback")
			}
			return err
		}
		var err error
		resp, err = s.feedbackRepo.AddResponse(ctx, tx, &types.FeedbackResponse{
			FeedbackID:  feedbackID,
			ResponderID: responderID,
			Message:     message,
			IsInternal:  isInternal,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func validateFeedback(params SubmitFeedbackParams) error {
	if (params.CitizenID == nil) == (params.UserID == nil) {
		return apierr.BadRequest("invalid_submitter", errors.New("feedback needs exactly one submitter"))
	}
	if !types.ValidFeedbackType(params.FeedbackType) {
		return apierr.BadRequest("invalid_feedback_type", fmt.Errorf("unknown feedback type %q", params.FeedbackType))
	}
	if !types.ValidFeedbackCategory(params.Category) {
		return apierr.BadRequest("invalid_feedback_category", fmt.Errorf("unknown feedback category %q", params.Category))
	}
	if params.Priority != "" && !types.ValidFeedbackPriority(params.Priority) {
		return apierr.BadRequest("invalid_feedback_priority", fmt.Errorf("unknown feedback priority %q", params.Priority))
	}
	if l := len(params.Title); l < 5 || l > 200 {
		return apierr.BadRequest("invalid_title", fmt.Errorf("title must be 5-200 characters, got %d", l))
	}
	if l := len(params.Description); l < 10 || l > 2000 {
		return apierr.BadRequest("invalid_description", fmt.Errorf("description must be 10-2000 characters, got %d", l))
	}
	if params.Rating != nil && (*params.Rating < 1 || *params.Rating > 5) {
		return apierr.BadRequest("invalid_rating", fmt.Errorf("rating must be 1-5, got %d", *params.Rating))
	}
	if len(params.Attachments) > maxFeedbackAttachments {
		return apierr.BadRequest("too_many_attachments",
			fmt.Errorf("at most %d attachments allowed, got %d", maxFeedbackAttachments, len(params.Attachments)))
	}
	return nil
}
