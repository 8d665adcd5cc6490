package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type requestOTPBody struct {
	Phone string `json:"phone" binding:"required"`
}

func (ah *AuthHandler) RequestOTP(c *gin.Context) {
	var body requestOTPBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := ah.authService.RequestOTP(c.Request.Context(), body.Phone); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"sent": true})
}

type verifyOTPBody struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
	Name  string `json:"name"`
}

func (ah *AuthHandler) VerifyOTP(c *gin.Context) {
	var body verifyOTPBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, citizen, err := ah.authService.VerifyOTP(c.Request.Context(), body.Phone, body.Code, body.Name)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"citizen":   citizen,
	})
}

type policeLoginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (ah *AuthHandler) PoliceLogin(c *gin.Context) {
	var body policeLoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, user, err := ah.authService.PoliceLogin(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"user":      user,
	})
}

type registerOfficerBody struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name" binding:"required"`
	BadgeNumber string `json:"badgeNumber"`
	Station     string `json:"station"`
}

func (ah *AuthHandler) RegisterOfficer(c *gin.Context) {
	var body registerOfficerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user, err := ah.authService.RegisterOfficer(c.Request.Context(),
		body.Email, body.Password, body.Name, body.BadgeNumber, body.Station)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			RespondError(c, http.StatusConflict, "email_taken", err)
			return
		}
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"user": user})
}
