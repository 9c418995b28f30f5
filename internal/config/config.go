package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Env           string
	Port          string
	PublicBaseURL string

	Database    DatabaseConfig
	Storage     StorageConfig
	MercadoPago MercadoPagoConfig
	Mail        MailConfig
	JWT         JWTConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Georef      GeorefConfig
	Tasks       TaskConfig
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	URL string
}

// StorageConfig 对象存储配置
type StorageConfig struct {
	Provider       string // supabase | s3 | local
	SupabaseURL    string
	AnonKey        string
	ServiceRoleKey string
	Bucket         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	PublicURL      string
	LocalDir       string
}

// MercadoPagoConfig payment provider credentials
type MercadoPagoConfig struct {
	AccessToken   string
	WebhookSecret string
	BaseURL       string
}

type MailConfig struct {
	ResendAPIKey string
	From         string
}

type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

type GeorefConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

type TaskConfig struct {
	ReconcileCron string
}

// IsDevelopment 是否开发环境
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Env:           v.GetString("APP_ENV"),
		Port:          v.GetString("SERVER_PORT"),
		PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
		Storage: StorageConfig{
			Provider:       v.GetString("STORAGE_PROVIDER"),
			SupabaseURL:    strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
			AnonKey:        v.GetString("SUPABASE_ANON_KEY"),
			ServiceRoleKey: v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
			Bucket:         v.GetString("STORAGE_BUCKET"),
			Region:         v.GetString("STORAGE_REGION"),
			Endpoint:       v.GetString("STORAGE_ENDPOINT"),
			AccessKey:      v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:      v.GetString("STORAGE_SECRET_KEY"),
			PublicURL:      strings.TrimRight(v.GetString("STORAGE_PUBLIC_URL"), "/"),
			LocalDir:       v.GetString("STORAGE_LOCAL_DIR"),
		},
		MercadoPago: MercadoPagoConfig{
			AccessToken:   v.GetString("MERCADOPAGO_ACCESS_TOKEN"),
			WebhookSecret: v.GetString("MERCADOPAGO_WEBHOOK_SECRET"),
			BaseURL:       v.GetString("MERCADOPAGO_BASE_URL"),
		},
		Mail: MailConfig{
			ResendAPIKey: v.GetString("RESEND_API_KEY"),
			From:         v.GetString("MAIL_FROM"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			AccessTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTTL: v.GetDuration("JWT_REFRESH_TTL"),
		},
		Redis: RedisConfig{
			Addr: v.GetString("REDIS_ADDR"),
		},
		Kafka: KafkaConfig{
			Brokers:    splitCSV(v.GetString("KAFKA_BROKERS")),
			OrderTopic: v.GetString("KAFKA_ORDER_TOPIC"),
		},
		Georef: GeorefConfig{
			BaseURL:  v.GetString("GEOREF_BASE_URL"),
			CacheTTL: v.GetDuration("GEOREF_CACHE_TTL"),
		},
		Tasks: TaskConfig{
			ReconcileCron: v.GetString("RECONCILE_CRON"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=teamwear port=5432 sslmode=disable")
	v.SetDefault("STORAGE_PROVIDER", "local")
	v.SetDefault("STORAGE_BUCKET", "images")
	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")
	v.SetDefault("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com")
	v.SetDefault("MAIL_FROM", "Pedidos <pedidos@example.com>")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_ACCESS_TTL", "2h")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("KAFKA_ORDER_TOPIC", "order-events")
	v.SetDefault("GEOREF_BASE_URL", "https://apis.datos.gob.ar/georef/api")
	v.SetDefault("GEOREF_CACHE_TTL", "168h")
	v.SetDefault("RECONCILE_CRON", "0 */10 * * * *")
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
