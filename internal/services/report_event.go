package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

// LogEventParams describes one audit-trail entry. Actor fields are
// optional; system-generated events leave them empty.
type LogEventParams struct {
	ReportID    uint
	EventType   string
	Title       string
	Description string
	Metadata    map[string]interface{}
	ActorID     *uuid.UUID
	ActorRole   string
}

type ReportEventService interface {
	Log(ctx context.Context, tx *gorm.DB, params LogEventParams) (*types.ReportEvent, error)
	Timeline(ctx context.Context, reportID uint) ([]*types.ReportEvent, error)
}

type reportEventService struct {
	eventRepo repos.ReportEventRepo
	log       *logger.Logger
}

func NewReportEventService(eventRepo repos.ReportEventRepo, baseLog *logger.Logger) ReportEventService {
	return &reportEventService{
		eventRepo: eventRepo,
		log:       baseLog.With("service", "ReportEventService"),
	}
}

func (s *reportEventService) Log(ctx context.Context, tx *gorm.DB, params LogEventParams) (*types.ReportEvent, error) {
	event := &types.ReportEvent{
		ReportID:    params.ReportID,
		EventType:   params.EventType,
		Title:       params.Title,
		Description: params.Description,
		ActorID:     params.ActorID,
		ActorRole:   params.ActorRole,
	}
	if len(params.Metadata) > 0 {
		raw, err := json.Marshal(params.Metadata)
		if err != nil {
			return nil, err
		}
		event.Metadata = datatypes.JSON(raw)
	}
	created, err := s.eventRepo.Create(ctx, tx, []*types.ReportEvent{event})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// Timeline returns a report's events oldest first.
func (s *reportEventService) Timeline(ctx context.Context, reportID uint) ([]*types.ReportEvent, error) {
	return s.eventRepo.GetByReportID(ctx, nil, reportID)
}
