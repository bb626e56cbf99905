package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Upstream      UpstreamConfig
	RabbitMQ      RabbitMQConfig
	Orders        OrdersConfig
	Sendgrid      SendgridConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NILE_APP_ENV" required:"true"`
	Port         string `envconfig:"NILE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NILE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NILE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"NILE_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NILE_DB_DSN"`
	Driver string `envconfig:"NILE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NILE_DB_HOST"`
	LegacyPort     int    `envconfig:"NILE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NILE_DB_USER"`
	LegacyPassword string `envconfig:"NILE_DB_PASSWORD"`
	LegacyName     string `envconfig:"NILE_DB_NAME"`
	LegacySSLMode  string `envconfig:"NILE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NILE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NILE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NILE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NILE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NILE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NILE_REDIS_ADDR"`
	Password     string        `envconfig:"NILE_REDIS_PASSWORD"`
	DB           int           `envconfig:"NILE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NILE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NILE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NILE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NILE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NILE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"NILE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"NILE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"NILE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"NILE_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NILE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NILE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NILE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NILE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NILE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"NILE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"NILE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"NILE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"NILE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"NILE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"NILE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"NILE_AUTO_MIGRATE" default:"false"`
}

// UpstreamConfig wires the merchant and order microservice clients.
type UpstreamConfig struct {
	MerchantBaseURL string        `envconfig:"NILE_MERCHANT_API_BASE_URL" required:"true"`
	OrderBaseURL    string        `envconfig:"NILE_ORDER_API_BASE_URL" required:"true"`
	APIKey          string        `envconfig:"NILE_UPSTREAM_API_KEY" required:"true"`
	Timeout         time.Duration `envconfig:"NILE_UPSTREAM_TIMEOUT" default:"10s"`
	MaxAttempts     int           `envconfig:"NILE_UPSTREAM_MAX_ATTEMPTS" default:"3"`
	RetryBaseDelay  time.Duration `envconfig:"NILE_UPSTREAM_RETRY_BASE_DELAY" default:"1s"`
}

type RabbitMQConfig struct {
	URL        string `envconfig:"NILE_RABBITMQ_URL" required:"true"`
	Exchange   string `envconfig:"NILE_RABBITMQ_EXCHANGE" default:"admin_order_events"`
	Queue      string `envconfig:"NILE_RABBITMQ_QUEUE" required:"true"`
	RoutingKey string `envconfig:"NILE_RABBITMQ_ROUTING_KEY" default:"order_updates"`
	Durable    bool   `envconfig:"NILE_RABBITMQ_DURABLE" default:"true"`
}

// OrdersConfig pins down which upstream order statuses count as successful.
// The mapping is deliberately configuration, not code (the business owns it).
type OrdersConfig struct {
	SuccessStatuses []string `envconfig:"NILE_ORDERS_SUCCESS_STATUSES" default:"SHIPPED,DELIVERED"`
	PaidStatus      string   `envconfig:"NILE_ORDERS_PAID_STATUS" default:"PAID"`
}

// SuccessSet returns the successful-status set, uppercased for lookups.
func (o OrdersConfig) SuccessSet() map[string]struct{} {
	set := make(map[string]struct{}, len(o.SuccessStatuses))
	for _, s := range o.SuccessStatuses {
		trimmed := strings.ToUpper(strings.TrimSpace(s))
		if trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}

type SendgridConfig struct {
	APIKey      string `envconfig:"NILE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"NILE_SENDGRID_FROM_EMAIL"`
	AppBaseURL  string `envconfig:"NILE_APP_BASE_URL" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
