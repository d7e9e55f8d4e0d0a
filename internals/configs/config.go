package configs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string
	Checkout          CheckoutConfig
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("[WARN] .env file not found, using system environment")
		} else {
			log.Println("[INFO] .env file loaded")
		}
	} else {
		log.Println("[INFO] Running in Railway, using system environment")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	AdminEmail = GetEnv("ADMIN_EMAIL")
	AdminPasswordHash = GetEnv("ADMIN_PASSWORD_HASH")

	if JWTSecret == "" {
		log.Println("[ERROR] JWT_SECRET is not set, admin routes will reject every request")
	}
	if AdminEmail == "" || AdminPasswordHash == "" {
		log.Println("[WARN] ADMIN_EMAIL / ADMIN_PASSWORD_HASH not set, admin login disabled")
	}

	cfg, err := LoadCheckoutConfig()
	if err != nil {
		log.Fatalf("[ERROR] invalid checkout configuration: %v", err)
	}
	Checkout = cfg
	log.Printf("[INFO] Checkout provider=%s currency=%s range=[%d,%d] presets=%v",
		cfg.Provider, cfg.Currency, cfg.MinAmount, cfg.MaxAmount, cfg.Presets)
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// =======================
// CHECKOUT SETTINGS
// =======================

// CheckoutConfig holds everything the donation checkout needs at runtime.
// Amounts are minor currency units.
type CheckoutConfig struct {
	Currency  string
	MinAmount int64
	MaxAmount int64
	Presets   []int64
	ReturnURL string

	Provider            string
	StripeSecretKey     string
	StripeWebhookSecret string
	StripeUIMode        string
	MidtransServerKey   string
	MidtransUseProd     bool

	PendingTTL time.Duration
	ExpiryCron string

	TelegramBotToken    string
	TelegramAdminChatID int64

	RedisHost     string
	RedisPort     string
	RedisPassword string
}

const (
	ProviderStripe   = "stripe"
	ProviderMidtrans = "midtrans"
)

var ErrInvalidCheckoutConfig = errors.New("invalid checkout config")

func LoadCheckoutConfig() (CheckoutConfig, error) {
	cfg := CheckoutConfig{
		Currency:            strings.ToLower(GetEnv("CHECKOUT_CURRENCY", "usd")),
		ReturnURL:           GetEnv("CHECKOUT_RETURN_URL", "http://localhost:3000/donate/thank-you"),
		Provider:            strings.ToLower(GetEnv("PAYMENT_PROVIDER", ProviderStripe)),
		StripeSecretKey:     GetEnv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: GetEnv("STRIPE_WEBHOOK_SECRET"),
		StripeUIMode:        strings.ToLower(GetEnv("STRIPE_UI_MODE", "embedded")),
		MidtransServerKey:   GetEnv("MIDTRANS_SERVER_KEY"),
		TelegramBotToken:    GetEnv("TELEGRAM_BOT_TOKEN"),
		RedisHost:           GetEnv("REDIS_HOST", "localhost"),
		RedisPort:           GetEnv("REDIS_PORT", "6379"),
		RedisPassword:       GetEnv("REDIS_PASSWORD"),
		ExpiryCron:          GetEnv("DONATION_EXPIRY_CRON", "@every 1h"),
	}

	var err error
	if cfg.MinAmount, err = envInt64("CHECKOUT_MIN_AMOUNT", 100); err != nil {
		return cfg, err
	}
	if cfg.MaxAmount, err = envInt64("CHECKOUT_MAX_AMOUNT", 1000000); err != nil {
		return cfg, err
	}
	if cfg.Presets, err = ParsePresets(GetEnv("CHECKOUT_PRESETS", "2500,5000,10000,25000")); err != nil {
		return cfg, err
	}
	ttlHours, err := envInt64("DONATION_PENDING_TTL_HOURS", 24)
	if err != nil {
		return cfg, err
	}
	cfg.PendingTTL = time.Duration(ttlHours) * time.Hour

	if v := GetEnv("MIDTRANS_USE_PROD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MidtransUseProd = b
		}
	}
	if v := GetEnv("TELEGRAM_ADMIN_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: TELEGRAM_ADMIN_CHAT_ID: %v", ErrInvalidCheckoutConfig, err)
		}
		cfg.TelegramAdminChatID = id
	}

	return cfg, cfg.Validate()
}

func (c CheckoutConfig) Validate() error {
	if c.MinAmount <= 0 {
		return fmt.Errorf("%w: min amount must be positive", ErrInvalidCheckoutConfig)
	}
	if c.MaxAmount < c.MinAmount {
		return fmt.Errorf("%w: max amount %d below min amount %d", ErrInvalidCheckoutConfig, c.MaxAmount, c.MinAmount)
	}
	for _, p := range c.Presets {
		if p < c.MinAmount || p > c.MaxAmount {
			return fmt.Errorf("%w: preset %d outside [%d,%d]", ErrInvalidCheckoutConfig, p, c.MinAmount, c.MaxAmount)
		}
	}
	switch c.Provider {
	case ProviderStripe, ProviderMidtrans:
	default:
		return fmt.Errorf("%w: unknown payment provider %q", ErrInvalidCheckoutConfig, c.Provider)
	}
	return nil
}

// ParsePresets reads a comma separated list of minor-unit amounts.
func ParsePresets(raw string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: preset %q", ErrInvalidCheckoutConfig, part)
		}
		out = append(out, n)
	}
	return out, nil
}

func envInt64(key string, def int64) (int64, error) {
	v := strings.TrimSpace(GetEnv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidCheckoutConfig, key, v)
	}
	return n, nil
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error:
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
