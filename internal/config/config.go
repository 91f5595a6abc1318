package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Risk      RiskConfig      `yaml:"risk"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"true"`
	QueryTimeout    time.Duration `yaml:"query_timeout"      env:"DATABASE_QUERY_TIMEOUT"      env-default:"5s"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"         env:"AUTH_JWT_SECRET"         env-required:"true"`
	JWTIssuer        string        `yaml:"jwt_issuer"         env:"AUTH_JWT_ISSUER"         env-default:"cuentascontrol"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"   env:"AUTH_ACCESS_TOKEN_TTL"   env-default:"168h"`
	PasswordHashCost int           `yaml:"password_hash_cost" env:"AUTH_PASSWORD_HASH_COST" env-default:"10"`
}

// RiskConfig holds the assignment engine's tunables.
//
// MaxTrafficPatterns is carried for parity with the surrounding tooling but
// no risk rule consumes it yet; see DESIGN.md for the open product question.
type RiskConfig struct {
	MinDaysBetweenReviews  int `yaml:"min_days_between_reviews"  env:"MIN_DAYS_BETWEEN_REVIEWS"          env-default:"7"`
	CooldownDays           int `yaml:"cooldown_days"             env:"DEFAULT_COOLDOWN_DAYS"             env-default:"30"`
	MaxAccountsPerProvince int `yaml:"max_accounts_per_province" env:"MAX_ACCOUNTS_PER_PROVINCE"         env-default:"50"`
	MaxTrafficPatterns     int `yaml:"max_traffic_patterns"      env:"MAX_TRAFFIC_PATTERNS_PER_ACCOUNT"  env-default:"2"`
	SectorLookbackDays     int `yaml:"sector_lookback_days"      env:"RISK_SECTOR_LOOKBACK_DAYS"         env-default:"90"`
	CandidateMultiplier    int `yaml:"candidate_multiplier"      env:"RISK_CANDIDATE_MULTIPLIER"         env-default:"3"`
}

// SchedulerConfig holds background job settings.
type SchedulerConfig struct {
	Enabled          bool   `yaml:"enabled"           env:"SCHEDULER_ENABLED"           env-default:"true"`
	CooldownSpec     string `yaml:"cooldown_spec"     env:"SCHEDULER_COOLDOWN_SPEC"     env-default:"@every 15m"`
	TrafficSpec      string `yaml:"traffic_spec"      env:"SCHEDULER_TRAFFIC_SPEC"      env-default:"@every 1h"`
	TrafficBatchSize int    `yaml:"traffic_batch_size" env:"SCHEDULER_TRAFFIC_BATCH"    env-default:"100"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
