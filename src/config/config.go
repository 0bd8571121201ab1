package config

import (
	"artbook/src/types"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
)

type Config struct {
	ApiEnv   string `mapstructure:"API_ENV"`
	Port     string `mapstructure:"PORT"`
	LogDir   string `mapstructure:"LOG_DIR"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	RedisHost      string `mapstructure:"REDIS_HOST"`
	LocalStore     string `mapstructure:"LOCAL_STORE"`
	LocalStorePath string `mapstructure:"LOCAL_STORE_PATH"`
	RemoteEnabled  bool   `mapstructure:"REMOTE_ENABLED"`

	StripeSecretKey string        `mapstructure:"STRIPE_SECRET_KEY"`
	PaymentTimeout  time.Duration `mapstructure:"PAYMENT_TIMEOUT"`
	RemoteTimeout   time.Duration `mapstructure:"REMOTE_TIMEOUT"`
	SyncInterval    time.Duration `mapstructure:"SYNC_INTERVAL"`

	Currency      string `mapstructure:"CURRENCY"`
	Timezone      string `mapstructure:"TIMEZONE"`
	OpensAt       string `mapstructure:"OPENS_AT"`
	ClosesAt      string `mapstructure:"CLOSES_AT"`
	SlotMinutes   int    `mapstructure:"SLOT_MINUTES"`
	HorizonMonths int    `mapstructure:"HORIZON_MONTHS"`

	KafkaBroker        string `mapstructure:"KAFKA_BROKER"`
	ConfirmationsQueue string `mapstructure:"CONFIRMATIONS_QUEUE"`
	NotificationsTopic string `mapstructure:"NOTIFICATIONS_TOPIC_ARN"`
	PushEnabled        bool   `mapstructure:"PUSH_ENABLED"`
	MailTransport      string `mapstructure:"MAIL_TRANSPORT"`
	MailFrom           string `mapstructure:"MAIL_FROM"`
	MailFromName       string `mapstructure:"MAIL_FROM_NAME"`
	SecretsDir         string `mapstructure:"SECRETS_DIR"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	AWSRoleArn string `mapstructure:"AWS_IAM_ROLE_ARN"`
	SecretsID  string `mapstructure:"AWS_SECRETS_ID"`

	DatabasePassword string `mapstructure:"DATABASE_PASSWORD"`

	CatalogPath     string `mapstructure:"CATALOG_PATH"`
	CatalogS3Bucket string `mapstructure:"CATALOG_S3_BUCKET"`
	CatalogS3Key    string `mapstructure:"CATALOG_S3_KEY"`
}

var cfg *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_ENV", "local")
	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("LOCAL_STORE", "bolt")
	v.SetDefault("LOCAL_STORE_PATH", "data/local.db")
	v.SetDefault("REMOTE_ENABLED", true)
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("PAYMENT_TIMEOUT", 30*time.Second)
	v.SetDefault("REMOTE_TIMEOUT", 5*time.Second)
	v.SetDefault("SYNC_INTERVAL", time.Minute)
	v.SetDefault("CURRENCY", "USD")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("OPENS_AT", "10:00")
	v.SetDefault("CLOSES_AT", "18:00")
	v.SetDefault("SLOT_MINUTES", 30)
	v.SetDefault("HORIZON_MONTHS", 3)
	v.SetDefault("KAFKA_BROKER", "localhost:9092")
	v.SetDefault("CONFIRMATIONS_QUEUE", "BookingConfirmations")
	v.SetDefault("NOTIFICATIONS_TOPIC_ARN", "")
	v.SetDefault("PUSH_ENABLED", false)
	v.SetDefault("MAIL_TRANSPORT", "smtp")
	v.SetDefault("MAIL_FROM", "")
	v.SetDefault("MAIL_FROM_NAME", "Artbook")
	v.SetDefault("SECRETS_DIR", "/secrets")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("AWS_IAM_ROLE_ARN", "")
	v.SetDefault("AWS_SECRETS_ID", "")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("CATALOG_PATH", "data/catalog.json")
	v.SetDefault("CATALOG_S3_BUCKET", "")
	v.SetDefault("CATALOG_S3_KEY", "catalog.json")
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg = &c
	return cfg
}

// Get returns the loaded configuration, loading it on first use.
func Get() *Config {
	if cfg != nil {
		return cfg
	}
	return Load()
}

// Set replaces the active configuration. Used by tests.
func Set(c *Config) {
	cfg = c
}

func (c *Config) IsLocal() bool {
	return types.Env(c.ApiEnv) == types.Local
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q, using UTC: %s\n", c.Timezone, err.Error())
		return time.UTC
	}
	return loc
}

// WithSuffix appends the environment to a queue or topic name outside production.
func (c *Config) WithSuffix(name string) string {
	if types.Env(c.ApiEnv) == types.Production {
		return name
	}
	return fmt.Sprintf("%s_%s", name, c.ApiEnv)
}

var ErrMalformedSecret = errors.New("secret is not a JSON object")

// ApplySecrets overlays the known keys of a JSON secret onto c and reports
// how many were set. Empty values are ignored.
func (c *Config) ApplySecrets(raw string) (int, error) {
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return 0, ErrMalformedSecret
	}
	fields := map[string]*string{
		"JWT_SECRET":        &c.JWTSecret,
		"STRIPE_SECRET_KEY": &c.StripeSecretKey,
		"SMTP_USERNAME":     &c.SMTPUsername,
		"SMTP_PASSWORD":     &c.SMTPPassword,
		"DATABASE_PASSWORD": &c.DatabasePassword,
		"REDIS_HOST":        &c.RedisHost,
	}
	n := 0
	for key, field := range fields {
		if r := gjson.Get(raw, key); r.Exists() && r.String() != "" {
			*field = r.String()
			n++
		}
	}
	return n, nil
}

func GetDSN() string {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_TIMEZONE", "UTC")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_NAME", "artbook")
	password := v.GetString("DATABASE_PASSWORD")
	if cfg != nil && cfg.DatabasePassword != "" {
		password = cfg.DatabasePassword
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		v.GetString("DATABASE_HOST"),
		v.GetString("DATABASE_USER"),
		password,
		v.GetString("DATABASE_NAME"),
		v.GetString("DATABASE_PORT"),
		v.GetString("DATABASE_SSLMODE"),
		v.GetString("DATABASE_TIMEZONE"),
	)
	return dsn
}

const DATE_FORMAT = "2006-01-02"
const SLOT_FORMAT = "15:04"
