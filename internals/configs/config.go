package configs

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// Config is the snapshot of environment settings taken once at boot.
type Config struct {
	Env      string
	AppName  string
	Port     string
	TimeZone string
	DBDriver string

	JWTSecret string

	MidtransServerKey string
	MidtransUseProd   bool

	SendgridAPIKey string
	MailFromName   string
	MailFromEmail  string

	RollbarToken string
	BuildVersion string

	// allow | reject
	OverpaymentPolicy string
	ReminderCron      string
	// an invoice is reminded at most once per interval
	ReminderInterval time.Duration
	ReminderBatch    int
	CORSOrigins      []string
}

var AppConfig Config

// =======================
// ENV LOADER
// =======================
func LoadEnv() Config {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ .env file not found, using system ENV")
		} else {
			log.Println("✅ .env file loaded")
		}
	} else {
		log.Println("🚀 Running in Railway, using system ENV")
	}

	AppConfig = Config{
		Env:               GetEnv("APP_ENV", "development"),
		AppName:           GetEnv("APP_NAME", "SchoolFee"),
		Port:              GetEnv("PORT", "3000"),
		TimeZone:          GetEnv("APP_TIMEZONE", "Local"),
		DBDriver:          strings.ToLower(GetEnv("DB_DRIVER", "postgres")),
		JWTSecret:         GetEnv("JWT_SECRET"),
		MidtransServerKey: GetEnv("MIDTRANS_SERVER_KEY"),
		MidtransUseProd:   GetEnvBool("MIDTRANS_USE_PROD", false),
		SendgridAPIKey:    GetEnv("SENDGRID_API_KEY"),
		MailFromName:      GetEnv("MAIL_FROM_NAME", "SchoolFee Bursar"),
		MailFromEmail:     GetEnv("MAIL_FROM_EMAIL", "bursar@localhost"),
		RollbarToken:      GetEnv("ROLLBAR_TOKEN"),
		BuildVersion:      GetEnv("BUILD_VERSION", "dev"),
		OverpaymentPolicy: strings.ToLower(GetEnv("PAYMENT_OVERPAYMENT_POLICY", "allow")),
		ReminderCron:      GetEnv("REMINDER_CRON", "0 7 * * *"),
		ReminderInterval:  time.Duration(GetEnvInt("REMINDER_INTERVAL_HOURS", 72)) * time.Hour,
		ReminderBatch:     GetEnvInt("REMINDER_BATCH", 200),
		CORSOrigins:       splitList(GetEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	if AppConfig.JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set!")
	} else {
		log.Println("✅ JWT_SECRET loaded.")
	}
	if AppConfig.MidtransServerKey == "" {
		log.Println("⚠️ MIDTRANS_SERVER_KEY is not set, online checkout disabled")
	}
	return AppConfig
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

func GetEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DSN builds the postgres URL from DB_* variables.
func DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=schoolfee",
		GetEnv("DB_USER"),
		GetEnv("DB_PASSWORD"),
		GetEnv("DB_HOST", "localhost"),
		GetEnv("DB_PORT", "5432"),
		GetEnv("DB_NAME"),
		GetEnv("DB_SSLMODE", "require"),
	)
}

// =======================
// DATABASE CONNECTOR
// =======================
func InitSeederDB() *gorm.DB {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("❌ Seeder database connection failed: %v", err)
	}
	log.Println("✅ Database (Seeder) connected.")
	return db
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	level := gormLogger.Warn
	if GetEnvBool("DB_LOG_QUERIES", false) {
		level = gormLogger.Info
	}
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
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
	case err != nil && err != gorm.ErrRecordNotFound && l.LogLevel >= gormLogger.Error:
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
