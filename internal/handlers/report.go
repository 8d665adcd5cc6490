package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/requestdata"
	"github.com/safestreets/safestreets-backend/internal/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

type submitReportBody struct {
	ViolationType   string    `json:"violationType" binding:"required"`
	CoReportedTypes []string  `json:"coReportedTypes"`
	Description     string    `json:"description"`
	VehicleNumber   string    `json:"vehicleNumber"`
	VehicleType     string    `json:"vehicleType"`
	VehicleColor    string    `json:"vehicleColor"`
	Latitude        float64   `json:"latitude" binding:"required"`
	Longitude       float64   `json:"longitude" binding:"required"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	District        string    `json:"district"`
	State           string    `json:"state"`
	Pincode         string    `json:"pincode"`
	OccurredAt      time.Time `json:"occurredAt"`
	MediaURLs       []string  `json:"mediaUrls"`
}

func (rh *ReportHandler) Submit(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	var body submitReportBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	report, err := rh.reportService.Submit(c.Request.Context(), services.SubmitReportParams{
		CitizenID:       citizenID,
		ViolationType:   body.ViolationType,
		CoReportedTypes: body.CoReportedTypes,
		Description:     body.Description,
		VehicleNumber:   body.VehicleNumber,
		VehicleType:     body.VehicleType,
		VehicleColor:    body.VehicleColor,
		Latitude:        body.Latitude,
		Longitude:       body.Longitude,
		Address:         body.Address,
		City:            body.City,
		District:        body.District,
		State:           body.State,
		Pincode:         body.Pincode,
		OccurredAt:      body.OccurredAt,
		MediaURLs:       body.MediaURLs,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"report": report})
}

func (rh *ReportHandler) MyReports(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	reports, err := rh.reportService.List(c.Request.Context(), repos.ReportFilter{
		CitizenID: &citizenID,
		Status:    c.Query("status"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"reports": reports})
}

func (rh *ReportHandler) GetByID(c *gin.Context) {
	id, ok := reportIDParam(c)
	if !ok {
		return
	}
	report, err := rh.reportService.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"report": report})
}

func (rh *ReportHandler) Timeline(c *gin.Context) {
	id, ok := reportIDParam(c)
	if !ok {
		return
	}
	events, err := rh.reportService.Timeline(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"events": events})
}

type attachMediaBody struct {
	MediaURLs []string `json:"mediaUrls" binding:"required"`
}

func (rh *ReportHandler) AttachMedia(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	id, ok := reportIDParam(c)
	if !ok {
		return
	}
	var body attachMediaBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	report, err := rh.reportService.AttachMedia(c.Request.Context(), citizenID, id, body.MediaURLs)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"report": report})
}

// --- shared helpers ---

func citizenFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := requestdata.CitizenID(c.Request.Context())
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("no citizen in context"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("invalid citizen id"))
		return uuid.Nil, false
	}
	return id, true
}

func userFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := requestdata.UserID(c.Request.Context())
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("no user in context"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("invalid user id"))
		return uuid.Nil, false
	}
	return id, true
}

func reportIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("report id must be numeric"))
		return 0, false
	}
	return uint(id), true
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
