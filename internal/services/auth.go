package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
	"github.com/safestreets/safestreets-backend/internal/platform/envutil"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/platform/otpstore"
	"github.com/safestreets/safestreets-backend/internal/platform/twilio"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/requestdata"
	"github.com/safestreets/safestreets-backend/internal/types"
)

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
	OTPExpiry time.Duration
	OTPLength int
}

func AuthConfigFromEnv() AuthConfig {
	return AuthConfig{
		JWTSecret: envutil.Str("JWT_SECRET", ""),
		JWTExpiry: time.Duration(envutil.Int("JWT_EXPIRY_HOURS", 72)) * time.Hour,
		OTPExpiry: time.Duration(envutil.Int("OTP_EXPIRY_MINUTES", 10)) * time.Minute,
		OTPLength: envutil.Int("OTP_LENGTH", 6),
	}
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// AuthResult pairs an issued token with the authenticated principal id.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	SubjectID uuid.UUID
	Role      string
}

type AuthService interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code, name string) (*AuthResult, *types.Citizen, error)
	PoliceLogin(ctx context.Context, email, password string) (*AuthResult, *types.User, error)
	RegisterOfficer(ctx context.Context, email, password, name, badgeNumber, station string) (*types.User, error)
	ParseToken(tokenString string) (uuid.UUID, string, error)
}

type authService struct {
	db          *gorm.DB
	citizenRepo repos.CitizenRepo
	userRepo    repos.UserRepo
	otps        otpstore.Store
	sms         twilio.Client
	cfg         AuthConfig
	log         *logger.Logger
}

func NewAuthService(
	db *gorm.DB,
	citizenRepo repos.CitizenRepo,
	userRepo repos.UserRepo,
	otps otpstore.Store,
	sms twilio.Client,
	cfg AuthConfig,
	baseLog *logger.Logger,
) (AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	return &authService{
		db:          db,
		citizenRepo: citizenRepo,
		userRepo:    userRepo,
		otps:        otps,
		sms:         sms,
		cfg:         cfg,
		log:         baseLog.With("service", "AuthService"),
	}, nil
}

func (s *authService) RequestOTP(ctx context.Context, phone string) error {
	if !phonePattern.MatchString(phone) {
		return apierr.BadRequest("invalid_phone", fmt.Errorf("phone %q is not a valid number", phone))
	}
	code, err := otpstore.GenerateCode(s.cfg.OTPLength)
	if err != nil {
		return err
	}
	if err := s.otps.Put(ctx, phone, code, s.cfg.OTPExpiry); err != nil {
		return err
	}

	if s.sms != nil {
		if _, err := s.sms.SendSMS(ctx, twilio.SendSMSRequest{
			To:   phone,
			Body: fmt.Sprintf("Your SafeStreets login code is %s. It expires in %d minutes.", code, int(s.cfg.OTPExpiry.Minutes())),
		}); err != nil {
			s.log.Error("otp sms dispatch failed", "phone", phone, "error", err.Error())
			return apierr.New(502, "sms_unavailable", errors.New("could not deliver verification code"))
		}
	} else {
		// No SMS provider configured; development only.
		s.log.Debug("otp issued without sms provider", "phone", phone)
	}
	s.log.Info("otp issued", "phone", phone)
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, phone, code, name string) (*AuthResult, *types.Citizen, error) {
	if err := s.otps.Verify(ctx, phone, code); err != nil {
		switch {
		case errors.Is(err, otpstore.ErrTooManyTrys):
			return nil, nil, apierr.RateLimited("too many verification attempts")
		case errors.Is(err, otpstore.ErrNotFound), errors.Is(err, otpstore.ErrMismatch):
			return nil, nil, apierr.Unauthorized(errors.New("invalid or expired code"))
		default:
			return nil, nil, err
		}
	}

	citizen, err := s.citizenRepo.GetByPhone(ctx, nil, phone)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		citizen, err = s.citizenRepo.Create(ctx, nil, &types.Citizen{
			Phone:           phone,
			Name:            name,
			IsPhoneVerified: true,
		})
		if err == nil {
			s.log.Info("citizen registered", "citizen_id", citizen.ID.String())
		}
	case err == nil && !citizen.IsPhoneVerified:
		citizen.IsPhoneVerified = true
		citizen, err = s.citizenRepo.Update(ctx, nil, citizen)
	}
	if err != nil {
		return nil, nil, err
	}

	result, err := s.issueToken(citizen.ID, requestdata.RoleCitizen)
	if err != nil {
		return nil, nil, err
	}
	return result, citizen, nil
}

func (s *authService) PoliceLogin(ctx context.Context, email, password string) (*AuthResult, *types.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, nil, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apierr.Unauthorized(errors.New("invalid credentials"))
	}
	if err != nil {
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, apierr.Unauthorized(errors.New("invalid credentials"))
	}

	result, err := s.issueToken(user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}
	return result, user, nil
}

func (s *authService) RegisterOfficer(ctx context.Context, email, password, name, badgeNumber, station string) (*types.User, error) {
	if len(password) < 8 {
		return nil, apierr.BadRequest("weak_password", errors.New("password must be at least 8 characters"))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.Create(ctx, nil, &types.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		BadgeNumber:  badgeNumber,
		Station:      station,
		Role:         requestdata.RolePolice,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("officer registered", "user_id", user.ID.String(), "badge_number", badgeNumber)
	return user, nil
}

func (s *authService) issueToken(subject uuid.UUID, role string) (*AuthResult, error) {
	expiresAt := time.Now().Add(s.cfg.JWTExpiry)
	claims := jwt.MapClaims{
		"sub":  subject.String(),
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     signed,
		ExpiresAt: expiresAt,
		SubjectID: subject,
		Role:      role,
	}, nil
}

func (s *authService) ParseToken(tokenString string) (uuid.UUID, string, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, "", apierr.Unauthorized(errors.New("invalid token"))
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", apierr.Unauthorized(errors.New("invalid token claims"))
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", apierr.Unauthorized(errors.New("invalid token subject"))
	}
	return id, role, nil
}
