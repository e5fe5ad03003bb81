package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Sandbox   SandboxConfig `mapstructure:"sandbox"`
	Redis     RedisConfig
	Engine    EngineConfig    `mapstructure:"engine"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

// SandboxConfig 自由编程题的代码执行沙箱
// Type 为 "judge0" 时走远程执行服务，否则使用本地命令执行
type SandboxConfig struct {
	Type             string `mapstructure:"type"`
	APIKey           string `mapstructure:"api_key"`
	URL              string
	Host             string
	TimeoutMs        int    `mapstructure:"timeout_ms"`
	MaxOutputBytes   int    `mapstructure:"max_output_bytes"`
	LocalWorkDir     string `mapstructure:"local_work_dir"`
	LocalInterpreter string `mapstructure:"local_interpreter"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// EngineConfig 评分与进阶引擎的可调参数。
// 这些权重是产品决策而非算法不变量，统一收在配置里，测试可以按需覆盖。
type EngineConfig struct {
	// 总评分权重：accuracy/speed/consistency，三者之和应为 1
	AccuracyWeight    float64 `mapstructure:"accuracy_weight"`
	SpeedWeight       float64 `mapstructure:"speed_weight"`
	ConsistencyWeight float64 `mapstructure:"consistency_weight"`

	// 速度基线（期望平均作答时长，毫秒）
	BaselineResponseMs float64 `mapstructure:"baseline_response_ms"`

	// 题型经验倍率
	FreeCodeMultiplier float64 `mapstructure:"free_code_multiplier"`
	ClozeMultiplier    float64 `mapstructure:"cloze_multiplier"`
	BlockMultiplier    float64 `mapstructure:"block_multiplier"`

	// 等级重估所需的最近尝试门槛
	MinAttemptsForAssessment int `mapstructure:"min_attempts_for_assessment"`
	AssessmentWindowDays     int `mapstructure:"assessment_window_days"`
}

// EngineDefaults 返回参考实现使用的缺省参数
func EngineDefaults() EngineConfig {
	return EngineConfig{
		AccuracyWeight:           0.4,
		SpeedWeight:              0.3,
		ConsistencyWeight:        0.3,
		BaselineResponseMs:       30000,
		FreeCodeMultiplier:       1.4,
		ClozeMultiplier:          1.1,
		BlockMultiplier:          1.0,
		MinAttemptsForAssessment: 5,
		AssessmentWindowDays:     30,
	}
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("CODE_MENTOR")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Sandbox
	viper.BindEnv("sandbox.type", "SANDBOX_TYPE")
	viper.BindEnv("sandbox.api_key", "SANDBOX_API_KEY")
	viper.BindEnv("sandbox.url", "SANDBOX_URL")
	viper.BindEnv("sandbox.host", "SANDBOX_HOST")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	applyEngineDefaults(&cfg.Engine)

	if cfg.Sandbox.TimeoutMs <= 0 {
		cfg.Sandbox.TimeoutMs = 1000
	}
	if cfg.Sandbox.MaxOutputBytes <= 0 {
		cfg.Sandbox.MaxOutputBytes = 64 * 1024
	}

	return &cfg, nil
}

// applyEngineDefaults 未配置的引擎参数回退到缺省值
func applyEngineDefaults(e *EngineConfig) {
	d := EngineDefaults()
	if e.AccuracyWeight <= 0 && e.SpeedWeight <= 0 && e.ConsistencyWeight <= 0 {
		e.AccuracyWeight = d.AccuracyWeight
		e.SpeedWeight = d.SpeedWeight
		e.ConsistencyWeight = d.ConsistencyWeight
	}
	if e.BaselineResponseMs <= 0 {
		e.BaselineResponseMs = d.BaselineResponseMs
	}
	if e.FreeCodeMultiplier <= 0 {
		e.FreeCodeMultiplier = d.FreeCodeMultiplier
	}
	if e.ClozeMultiplier <= 0 {
		e.ClozeMultiplier = d.ClozeMultiplier
	}
	if e.BlockMultiplier <= 0 {
		e.BlockMultiplier = d.BlockMultiplier
	}
	if e.MinAttemptsForAssessment <= 0 {
		e.MinAttemptsForAssessment = d.MinAttemptsForAssessment
	}
	if e.AssessmentWindowDays <= 0 {
		e.AssessmentWindowDays = d.AssessmentWindowDays
	}
}
