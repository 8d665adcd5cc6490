package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/services"
)

type FeedbackHandler struct {
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

type submitFeedbackBody struct {
	ReportID     *uint    `json:"reportId"`
	FeedbackType string   `json:"feedbackType" binding:"required"`
	Category     string   `json:"category" binding:"required"`
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Rating       *int     `json:"rating"`
	Priority     string   `json:"priority"`
	IsAnonymous  bool     `json:"isAnonymous"`
	ContactEmail string   `json:"contactEmail"`
	ContactPhone string   `json:"contactPhone"`
	Attachments  []string `json:"attachments"`
}

// SubmitAsCitizen files feedback from the authenticated citizen.
func (fh *FeedbackHandler) SubmitAsCitizen(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	fh.submit(c, &citizenID, nil)
}

// SubmitAsOfficer files feedback from the authenticated police user.
func (fh *FeedbackHandler) SubmitAsOfficer(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	fh.submit(c, nil, &userID)
}

func (fh *FeedbackHandler) submit(c *gin.Context, citizenID, userID *uuid.UUID) {
	var body submitFeedbackBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	fb, err := fh.feedbackService.Submit(c.Request.Context(), services.SubmitFeedbackParams{
		CitizenID:    citizenID,
		UserID:       userID,
		ReportID:     body.ReportID,
		FeedbackType: body.FeedbackType,
		Category:     body.Category,
		Title:        body.Title,
		Description:  body.Description,
		Rating:       body.Rating,
		Priority:     body.Priority,
		IsAnonymous:  body.IsAnonymous,
		ContactEmail: body.ContactEmail,
		ContactPhone: body.ContactPhone,
		Attachments:  body.Attachments,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"feedback": fb})
}

// MyFeedback lists the citizen's own submissions. Internal responses
// are never included here.
func (fh *FeedbackHandler) MyFeedback(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	items, err := fh.feedbackService.MyFeedback(c.Request.Context(), citizenID, limit, offset)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"feedback": items})
}

func (fh *FeedbackHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	filter := repos.FeedbackFilter{
		FeedbackType: c.Query("feedbackType"),
		Category:     c.Query("category"),
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		Limit:        limit,
		Offset:       offset,
	}
	if raw := c.Query("reportId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_id", err)
			return
		}
		reportID := uint(id)
		filter.ReportID = &reportID
	}
	if raw := c.Query("assignedTo"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_id", err)
			return
		}
		filter.AssignedToID = &id
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
	items, err := fh.feedbackService.List(c.Request.Context(), filter)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"feedback": items})
}

func (fh *FeedbackHandler) GetByID(c *gin.Context) {
	id, ok := feedbackIDParam(c)
	if !ok {
		return
	}
	fb, err := fh.feedbackService.GetByID(c.Request.Context(), id, false)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"feedback": fb})
}

type updateFeedbackBody struct {
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	AssignedToID    *uuid.UUID `json:"assignedToId"`
	ResolutionNotes string     `json:"resolutionNotes"`
}

func (fh *FeedbackHandler) Update(c *gin.Context) {
	id, ok := feedbackIDParam(c)
	if !ok {
		return
	}
	var body updateFeedbackBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	fb, err := fh.feedbackService.Update(c.Request.Context(), id, services.UpdateFeedbackParams{
		Status:          body.Status,
		Priority:        body.Priority,
		AssignedToID:    body.AssignedToID,
		ResolutionNotes: body.ResolutionNotes,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"feedback": fb})
}

type feedbackResponseBody struct {
	Message    string `json:"message" binding:"required"`
	IsInternal bool   `json:"isInternal"`
}

func (fh *FeedbackHandler) Respond(c *gin.Context) {
	responderID, ok := userFromContext(c)
	if !ok {
		return
	}
	id, ok := feedbackIDParam(c)
	if !ok {
		return
	}
	var body feedbackResponseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	resp, err := fh.feedbackService.Respond(c.Request.Context(), id, responderID, body.Message, body.IsInternal)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"response": resp})
}

func feedbackIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return 0, false
	}
	return uint(id), true
}
