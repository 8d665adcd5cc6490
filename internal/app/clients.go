package app

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/safestreets/safestreets-backend/internal/platform/envutil"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/platform/otpstore"
	"github.com/safestreets/safestreets-backend/internal/platform/twilio"
)

type Clients struct {
	SMS  twilio.Client
	OTPs otpstore.Store
}

// wireClients builds the outbound clients. Both degrade gracefully:
// without Twilio credentials SMS is skipped, without Redis the OTP
// store falls back to memory (single-node only).
func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")

	var sms twilio.Client
	if c, err := twilio.NewFromEnv(log); err != nil {
		log.Warn("twilio unavailable, sms delivery disabled", "error", err.Error())
	} else {
		sms = c
	}

	var otps otpstore.Store
	redisURL := envutil.Str("REDIS_URL", "")
	if redisURL == "" {
		log.Warn("REDIS_URL not set, using in-memory otp store")
		otps = otpstore.NewMemory()
	} else {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Warn("invalid REDIS_URL, using in-memory otp store", "error", err.Error())
			otps = otpstore.NewMemory()
		} else {
			rdb := redis.NewClient(opts)
			if err := rdb.Ping(context.Background()).Err(); err != nil {
				log.Warn("redis unreachable, using in-memory otp store", "error", err.Error())
				otps = otpstore.NewMemory()
			} else {
				otps = otpstore.NewRedis(rdb)
			}
		}
	}

	return Clients{SMS: sms, OTPs: otps}
}
