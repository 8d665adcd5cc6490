package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

type PointsService interface {
	// AwardInTx credits points inside the caller's transaction and
	// appends the EARN ledger entry with the resulting balance.
	AwardInTx(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID, reportID uint, points int, description string) (*types.PointsTransaction, error)
	Redeem(ctx context.Context, citizenID uuid.UUID, points int, description string) (*types.PointsTransaction, error)
	History(ctx context.Context, citizenID uuid.UUID, limit, offset int) ([]*types.PointsTransaction, error)
	// LedgerBalance replays the ledger; used to audit counter drift.
	LedgerBalance(ctx context.Context, citizenID uuid.UUID) (int64, error)
}

type pointsService struct {
	db          *gorm.DB
	citizenRepo repos.CitizenRepo
	ledgerRepo  repos.PointsTransactionRepo
	log         *logger.Logger
}

func NewPointsService(
	db *gorm.DB,
	citizenRepo repos.CitizenRepo,
	ledgerRepo repos.PointsTransactionRepo,
	baseLog *logger.Logger,
) PointsService {
	return &pointsService{
		db:          db,
		citizenRepo: citizenRepo,
		ledgerRepo:  ledgerRepo,
		log:         baseLog.With("service", "PointsService"),
	}
}

func (s *pointsService) AwardInTx(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID, reportID uint, points int, description string) (*types.PointsTransaction, error) {
	if points <= 0 {
		return nil, apierr.BadRequest("invalid_points", fmt.Errorf("award must be positive, got %d", points))
	}
	if err := s.citizenRepo.ApplyApproval(ctx, tx, citizenID, points); err != nil {
		return nil, err
	}
	citizen, err := s.citizenRepo.GetByID(ctx, tx, citizenID)
	if err != nil {
		return nil, err
	}
	rid := reportID
	txn := &types.PointsTransaction{
		CitizenID:    citizenID,
		ReportID:     &rid,
		Type:         types.PointsEarn,
		Points:       points,
		BalanceAfter: citizen.TotalPoints,
		Description:  description,
	}
	return s.ledgerRepo.Create(ctx, tx, txn)
}

func (s *pointsService) Redeem(ctx context.Context, citizenID uuid.UUID, points int, description string) (*types.PointsTransaction, error) {
	if points <= 0 {
		return nil, apierr.BadRequest("invalid_points", fmt.Errorf("redemption must be positive, got %d", points))
	}
	var out *types.PointsTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.citizenRepo.DeductPoints(ctx, tx, citizenID, points); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.New(http.StatusUnprocessableEntity, "insufficient_points",
					fmt.Errorf("citizen lacks %d points", points))
			}
			return err
		}
		citizen, err := s.citizenRepo.GetByID(ctx, tx, citizenID)
		if err != nil {
			return err
		}
		// Ledger deltas are signed; redemptions debit.
		txn := &types.PointsTransaction{
			CitizenID:    citizenID,
			Type:         types.PointsRedeem,
			Points:       -points,
			BalanceAfter: citizen.TotalPoints,
			Description:  description,
		}
		out, err = s.ledgerRepo.Create(ctx, tx, txn)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("points redeemed",
		"citizen_id", citizenID.String(),
		"points", points,
		"balance_after", out.BalanceAfter,
	)
	return out, nil
}

func (s *pointsService) History(ctx context.Context, citizenID uuid.UUID, limit, offset int) ([]*types.PointsTransaction, error) {
	return s.ledgerRepo.GetByCitizenID(ctx, nil, citizenID, limit, offset)
}

func (s *pointsService) LedgerBalance(ctx context.Context, citizenID uuid.UUID) (int64, error) {
	return s.ledgerRepo.SumByCitizenID(ctx, nil, citizenID)
}
