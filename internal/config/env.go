package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	StoreDriver string
	DBDSN       string

	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string

	HoldTTL         time.Duration
	ReclaimSchedule string

	EmailWebhook string
	SMSWebhook   string
	OTPCode      string

	CORSAllowedOrigins []string
}

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// LoadEnv reads .env (if present) then the process environment.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[CONFIG] action=load_dotenv msg=%v", err)
	}

	env := Env{
		AppAddr:            getString("APP_ADDR", ":8080"),
		GinMode:            getString("GIN_MODE", ""),
		StoreDriver:        strings.ToLower(getString("STORE_DRIVER", StoreMySQL)),
		DBDSN:              getString("DB_DSN", "root:@tcp(127.0.0.1:3306)/bus_booking"),
		JWTSecret:          getString("JWT_SECRET", ""),
		TokenTTL:           getDuration("TOKEN_TTL", 24*time.Hour),
		AdminEmail:         getString("ADMIN_EMAIL", ""),
		AdminPassword:      getString("ADMIN_PASSWORD", ""),
		HoldTTL:            getDuration("HOLD_TTL", 10*time.Minute),
		ReclaimSchedule:    getString("RECLAIM_SCHEDULE", "@every 1m"),
		EmailWebhook:       getString("NOTIFY_EMAIL_WEBHOOK", ""),
		SMSWebhook:         getString("NOTIFY_SMS_WEBHOOK", ""),
		OTPCode:            getString("OTP_CODE", ""),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
	return env
}

func getString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[CONFIG] action=parse_duration key=%s msg=invalid value %q, using %s", key, v, def)
		return def
	}
	return d
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
