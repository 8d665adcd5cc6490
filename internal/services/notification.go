package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/envutil"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/platform/twilio"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

type NotificationConfig struct {
	TTL time.Duration
}

func NotificationConfigFromEnv() NotificationConfig {
	return NotificationConfig{
		TTL: time.Duration(envutil.Int("NOTIFICATION_TTL_DAYS", 7)) * 24 * time.Hour,
	}
}

// Notifier is the best-effort post-commit hook invoked after a
// lifecycle transition commits. Implementations log failures and never
// return them to the transition path.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, citizen *types.Citizen, reportID uint, status, notes string)
	NotifyPointsEarned(ctx context.Context, citizen *types.Citizen, reportID uint, points, newTotal int)
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, citizenID uuid.UUID, limit, offset int) ([]*types.Notification, error)
	MarkRead(ctx context.Context, citizenID uuid.UUID, id uint) error
	MarkAllRead(ctx context.Context, citizenID uuid.UUID) (int64, error)
}

type notificationService struct {
	db               *gorm.DB
	notificationRepo repos.NotificationRepo
	sms              twilio.Client
	cfg              NotificationConfig
	log              *logger.Logger
}

// NewNotificationService builds the notification surface. sms may be
// nil, in which case delivery is in-app only.
func NewNotificationService(
	db *gorm.DB,
	notificationRepo repos.NotificationRepo,
	sms twilio.Client,
	cfg NotificationConfig,
	baseLog *logger.Logger,
) NotificationService {
	return &notificationService{
		db:               db,
		notificationRepo: notificationRepo,
		sms:              sms,
		cfg:              cfg,
		log:              baseLog.With("service", "NotificationService"),
	}
}

func (s *notificationService) NotifyStatusChange(ctx context.Context, citizen *types.Citizen, reportID uint, status, notes string) {
	title := fmt.Sprintf("Report #%d is now %s", reportID, status)
	body := notes
	s.deliver(ctx, citizen, reportID, types.NotificationStatusChange, title, body)
}

func (s *notificationService) NotifyPointsEarned(ctx context.Context, citizen *types.Citizen, reportID uint, points, newTotal int) {
	title := fmt.Sprintf("You earned %d points", points)
	body := fmt.Sprintf("Report #%d was approved. New balance: %d points.", reportID, newTotal)
	s.deliver(ctx, citizen, reportID, types.NotificationPointsEarned, title, body)
}

// deliver writes the in-app row and fires the SMS. Both legs are
// best-effort; a failure here must never surface to the caller.
func (s *notificationService) deliver(ctx context.Context, citizen *types.Citizen, reportID uint, kind, title, body string) {
	if citizen == nil {
		return
	}
	rid := reportID
	n := &types.Notification{
		CitizenID: citizen.ID,
		ReportID:  &rid,
		Type:      kind,
		Title:     title,
		Body:      body,
		ExpiresAt: time.Now().Add(s.cfg.TTL),
	}
	if _, err := s.notificationRepo.Create(ctx, nil, n); err != nil {
		s.log.Warn("notification create failed",
			"citizen_id", citizen.ID.String(),
			"report_id", reportID,
			"error", err.Error(),
		)
	}

	if s.sms == nil || citizen.Phone == "" || !citizen.NotificationsEnabled {
		return
	}
	if _, err := s.sms.SendSMS(ctx, twilio.SendSMSRequest{
		To:   citizen.Phone,
		Body: title + ". " + body,
	}); err != nil {
		s.log.Warn("sms dispatch failed",
			"citizen_id", citizen.ID.String(),
			"report_id", reportID,
			"error", err.Error(),
		)
	}
}

// List sweeps expired rows first, then returns the citizen's
// notifications newest first. There is no background scheduler; reads
// carry the sweep.
func (s *notificationService) List(ctx context.Context, citizenID uuid.UUID, limit, offset int) ([]*types.Notification, error) {
	if pruned, err := s.notificationRepo.DeleteExpired(ctx, nil, time.Now()); err != nil {
		s.log.Warn("expiry sweep failed", "error", err.Error())
	} else if pruned > 0 {
		s.log.Debug("expired notifications pruned", "count", pruned)
	}
	return s.notificationRepo.ListByCitizenID(ctx, nil, citizenID, limit, offset)
}

// MarkRead deletes the notification; read messages are not retained.
func (s *notificationService) MarkRead(ctx context.Context, citizenID uuid.UUID, id uint) error {
	return s.notificationRepo.Delete(ctx, nil, citizenID, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, citizenID uuid.UUID) (int64, error) {
	return s.notificationRepo.DeleteAllForCitizen(ctx, nil, citizenID)
}
