package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

// fineSchedule maps violation type and severity to the standard fine
// amount in rupees. Used when the issuing officer does not set an
// explicit amount.
var fineSchedule = map[string]map[string]int{
	types.ViolationSpeed:        {types.SeverityMinor: 1000, types.SeverityMajor: 1500, types.SeverityCritical: 2000},
	types.ViolationSignalJump:   {types.SeverityMinor: 500, types.SeverityMajor: 750, types.SeverityCritical: 1000},
	types.ViolationWrongSide:    {types.SeverityMinor: 2000, types.SeverityMajor: 3000, types.SeverityCritical: 5000},
	types.ViolationNoParking:    {types.SeverityMinor: 300, types.SeverityMajor: 500, types.SeverityCritical: 1000},
	types.ViolationHelmetBelt:   {types.SeverityMinor: 1000, types.SeverityMajor: 1500, types.SeverityCritical: 2000},
	types.ViolationMobileUsage:  {types.SeverityMinor: 1000, types.SeverityMajor: 1500, types.SeverityCritical: 2000},
	types.ViolationLaneCutting:  {types.SeverityMinor: 500, types.SeverityMajor: 750, types.SeverityCritical: 1000},
	types.ViolationDrunkDriving: {types.SeverityMinor: 5000, types.SeverityMajor: 7500, types.SeverityCritical: 10000},
	types.ViolationOther:        {types.SeverityMinor: 500, types.SeverityMajor: 750, types.SeverityCritical: 1000},
}

// SuggestedFine returns the scheduled amount for a violation type and
// severity. Unknown types fall back to the OTHERS row; an empty
// severity is treated as MINOR.
func SuggestedFine(violationType, severity string) int {
	row, ok := fineSchedule[violationType]
	if !ok {
		row = fineSchedule[types.ViolationOther]
	}
	if severity == "" {
		severity = types.SeverityMinor
	}
	return row[severity]
}

type FineService interface {
	Issue(ctx context.Context, issuerID uuid.UUID, reportID uint, amount int, notes string) (*types.FineRecord, error)
	ListByVehicle(ctx context.Context, vehicleNumber string) ([]*types.FineRecord, error)
	SetStatus(ctx context.Context, fineID uint, status string) error
}

type fineService struct {
	db         *gorm.DB
	fineRepo   repos.FineRepo
	reportRepo repos.ViolationReportRepo
	log        *logger.Logger
}

func NewFineService(
	db *gorm.DB,
	fineRepo repos.FineRepo,
	reportRepo repos.ViolationReportRepo,
	baseLog *logger.Logger,
) FineService {
	return &fineService{
		db:         db,
		fineRepo:   fineRepo,
		reportRepo: reportRepo,
		log:        baseLog.With("service", "FineService"),
	}
}

// Issue creates a fine against an approved report's vehicle and marks
// the challan on the report. A zero amount falls back to the schedule
// for the report's violation type and severity.
func (s *fineService) Issue(ctx context.Context, issuerID uuid.UUID, reportID uint, amount int, notes string) (*types.FineRecord, error) {
	if amount < 0 {
		return nil, apierr.BadRequest("invalid_amount", fmt.Errorf("fine amount must not be negative, got %d", amount))
	}
	var fine *types.FineRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report, err := s.reportRepo.GetByID(ctx, tx, reportID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("report")
			}
			return err
		}
		if report.Status != types.StatusApproved {
			return apierr.New(409, "report_not_approved",
				fmt.Errorf("fines require an approved report, status is %s", report.Status))
		}
		if report.VehicleNumber == "" {
			return apierr.BadRequest("no_vehicle", errors.New("report carries no vehicle number"))
		}
		if amount == 0 {
			amount = SuggestedFine(report.ViolationType, report.Severity)
		}

		fine = &types.FineRecord{
			ReportID:      reportID,
			IssuedByID:    issuerID,
			VehicleNumber: report.VehicleNumber,
			Amount:        amount,
			Status:        types.FineIssued,
			Notes:         notes,
		}
		if _, err := s.fineRepo.Create(ctx, tx, fine); err != nil {
			return err
		}

		report.ChallanIssued = true
		report.ChallanNumber = fmt.Sprintf("CH-%06d", fine.ID)
		_, err = s.reportRepo.Update(ctx, tx, report)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("fine issued",
		"fine_id", fine.ID,
		"report_id", reportID,
		"amount", amount,
	)
	return fine, nil
}

func (s *fineService) ListByVehicle(ctx context.Context, vehicleNumber string) ([]*types.FineRecord, error) {
	return s.fineRepo.ListByVehicle(ctx, nil, vehicleNumber)
}

func (s *fineService) SetStatus(ctx context.Context, fineID uint, status string) error {
	switch status {
	case types.FinePaid, types.FineWaived:
	default:
		return apierr.BadRequest("invalid_fine_status", fmt.Errorf("unknown fine status %q", status))
	}
	if err := s.fineRepo.UpdateStatus(ctx, nil, fineID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("fine")
		}
		return err
	}
	return nil
}
