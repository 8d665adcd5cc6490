package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/services"
)

type PoliceHandler struct {
	reviewService    services.ReviewService
	reportService    services.ReportService
	dashboardService services.DashboardService
	fineService      services.FineService
}

func NewPoliceHandler(
	reviewService services.ReviewService,
	reportService services.ReportService,
	dashboardService services.DashboardService,
	fineService services.FineService,
) *PoliceHandler {
	return &PoliceHandler{
		reviewService:    reviewService,
		reportService:    reportService,
		dashboardService: dashboardService,
		fineService:      fineService,
	}
}

func (ph *PoliceHandler) Queue(c *gin.Context) {
	limit, offset := pagination(c)
	filter := repos.ReportFilter{
		Status:        c.Query("status"),
		ViolationType: c.Query("violationType"),
		City:          c.Query("city"),
		VehicleNumber: c.Query("vehicleNumber"),
		Limit:         limit,
		Offset:        offset,
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		filter.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		filter.To = to
	}
	reports, err := ph.reviewService.Queue(c.Request.Context(), filter)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"reports": reports})
}

type reviewBody struct {
	Status        string `json:"status" binding:"required"`
	Notes         string `json:"notes"`
	Severity      string `json:"severity"`
	ChallanNumber string `json:"challanNumber"`
}

func (ph *PoliceHandler) Review(c *gin.Context) {
	reviewerID, ok := userFromContext(c)
	if !ok {
		return
	}
	id, ok := reportIDParam(c)
	if !ok {
		return
	}
	var body reviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	report, err := ph.reviewService.Transition(c.Request.Context(), services.ReviewDecision{
		ReportID:      id,
		ReviewerID:    reviewerID,
		TargetStatus:  body.Status,
		Notes:         body.Notes,
		Severity:      body.Severity,
		ChallanNumber: body.ChallanNumber,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"report": report})
}

func (ph *PoliceHandler) Dashboard(c *gin.Context) {
	overview, err := ph.dashboardService.Overview(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"dashboard": overview})
}

func (ph *PoliceHandler) DuplicateGroup(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("groupId"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	members, err := ph.reportService.GroupMembers(c.Request.Context(), uint(groupID))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"reports": members})
}

// Amount is optional; zero defers to the fine schedule for the
// report's violation type and severity.
type issueFineBody struct {
	Amount int    `json:"amount"`
	Notes  string `json:"notes"`
}

func (ph *PoliceHandler) IssueFine(c *gin.Context) {
	issuerID, ok := userFromContext(c)
	if !ok {
		return
	}
	id, ok := reportIDParam(c)
	if !ok {
		return
	}
	var body issueFineBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	fine, err := ph.fineService.Issue(c.Request.Context(), issuerID, id, body.Amount, body.Notes)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"fine": fine})
}

func (ph *PoliceHandler) VehicleFines(c *gin.Context) {
	vehicle := c.Param("vehicleNumber")
	fines, err := ph.fineService.ListByVehicle(c.Request.Context(), vehicle)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"fines": fines})
}

type fineStatusBody struct {
	Status string `json:"status" binding:"required"`
}

func (ph *PoliceHandler) SetFineStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var body fineStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := ph.fineService.SetStatus(c.Request.Context(), uint(id), body.Status); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}
