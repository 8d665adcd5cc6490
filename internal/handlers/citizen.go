package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/safestreets/safestreets-backend/internal/services"
)

type CitizenHandler struct {
	citizenService      services.CitizenService
	pointsService       services.PointsService
	notificationService services.NotificationService
}

func NewCitizenHandler(
	citizenService services.CitizenService,
	pointsService services.PointsService,
	notificationService services.NotificationService,
) *CitizenHandler {
	return &CitizenHandler{
		citizenService:      citizenService,
		pointsService:       pointsService,
		notificationService: notificationService,
	}
}

func (ch *CitizenHandler) GetMe(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	stats, err := ch.citizenService.Profile(c.Request.Context(), citizenID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"me": stats})
}

type updateProfileBody struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	City                 string `json:"city"`
	IsAnonymousMode      *bool  `json:"isAnonymousMode"`
	NotificationsEnabled *bool  `json:"notificationsEnabled"`
}

func (ch *CitizenHandler) UpdateMe(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	var body updateProfileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	citizen, err := ch.citizenService.UpdateProfile(c.Request.Context(), citizenID, services.UpdateProfileParams{
		Name:                 body.Name,
		Email:                body.Email,
		City:                 body.City,
		IsAnonymousMode:      body.IsAnonymousMode,
		NotificationsEnabled: body.NotificationsEnabled,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"citizen": citizen})
}

func (ch *CitizenHandler) PointsHistory(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	history, err := ch.pointsService.History(c.Request.Context(), citizenID, limit, offset)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"transactions": history})
}

type redeemBody struct {
	Points      int    `json:"points" binding:"required"`
	Description string `json:"description"`
}

func (ch *CitizenHandler) RedeemPoints(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	var body redeemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	txn, err := ch.pointsService.Redeem(c.Request.Context(), citizenID, body.Points, body.Description)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"transaction": txn})
}

func (ch *CitizenHandler) Notifications(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	notifications, err := ch.notificationService.List(c.Request.Context(), citizenID, limit, offset)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"notifications": notifications})
}

func (ch *CitizenHandler) ReadNotification(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := ch.notificationService.MarkRead(c.Request.Context(), citizenID, uint(id)); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"read": true})
}

func (ch *CitizenHandler) ReadAllNotifications(c *gin.Context) {
	citizenID, ok := citizenFromContext(c)
	if !ok {
		return
	}
	count, err := ch.notificationService.MarkAllRead(c.Request.Context(), citizenID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"read": count})
}

func (ch *CitizenHandler) Leaderboard(c *gin.Context) {
	limit, _ := pagination(c)
	citizens, err := ch.citizenService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"leaderboard": citizens})
}
