package config

// GlobalConfig is the root configuration loaded from the YAML config file.
type GlobalConfig struct {
	LogConfig       LogConfig       `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	FetcherConfig   FetcherConfig   `json:"fetcher_config,omitempty" yaml:"fetcher_config,omitempty"`
	SchedulerConfig SchedulerConfig `json:"scheduler_config,omitempty" yaml:"scheduler_config,omitempty"`
	StorageConfig   StorageConfig   `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	PublisherConfig PublisherConfig `json:"publisher_config,omitempty" yaml:"publisher_config,omitempty"`
	AIConfig        AIConfig        `json:"ai_config,omitempty" yaml:"ai_config,omitempty"`
	LimiterConfig   LimiterConfig   `json:"limiter_config,omitempty" yaml:"limiter_config,omitempty"`
}

// NewDefaultGlobalConfig creates the default configuration.
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:       NewDefaultLogConfig(),
		FetcherConfig:   NewDefaultFetcherConfig(),
		SchedulerConfig: NewDefaultSchedulerConfig(),
		StorageConfig:   NewDefaultStorageConfig(),
		PublisherConfig: NewDefaultPublisherConfig(),
		AIConfig:        NewDefaultAIConfig(),
		LimiterConfig:   NewDefaultLimiterConfig(),
	}
}

// LogConfig defines logging behaviour.
type LogConfig struct {
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=trace debug info warn error fatal panic"`
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=console json"`
	LogFile       string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty" validate:"omitempty,min=1"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty" validate:"omitempty,min=0"`
}

// NewDefaultLogConfig creates default logging configuration.
func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		LogLevel:      "info",
		LogFormat:     "console",
		LogFile:       "",
		MaxLogSizeMB:  100,
		MaxLogBackups: 3,
	}
}

// FetcherConfig defines the resilient page fetcher behaviour.
type FetcherConfig struct {
	HTTPTimeoutSeconds int  `json:"http_timeout_seconds,omitempty" yaml:"http_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	MaxRetries         int  `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"omitempty,min=1,max=10"`
	MaxContentSize     int  `json:"max_content_size,omitempty" yaml:"max_content_size,omitempty" validate:"omitempty,min=1"` // bytes
	InsecureSkipVerify bool `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// NewDefaultFetcherConfig creates default fetcher configuration.
func NewDefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		HTTPTimeoutSeconds: 30,
		MaxRetries:         3,
		MaxContentSize:     5 * 1024 * 1024,
		InsecureSkipVerify: false,
	}
}

// SchedulerConfig defines job scheduling behaviour.
type SchedulerConfig struct {
	MaxConcurrentChecks       int `json:"max_concurrent_checks,omitempty" yaml:"max_concurrent_checks,omitempty" validate:"omitempty,min=1"`
	NotificationRetentionDays int `json:"notification_retention_days,omitempty" yaml:"notification_retention_days,omitempty" validate:"omitempty,min=1"`
	MaintenanceIntervalHours  int `json:"maintenance_interval_hours,omitempty" yaml:"maintenance_interval_hours,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultSchedulerConfig creates default scheduler configuration.
func NewDefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxConcurrentChecks:       5,
		NotificationRetentionDays: 30,
		MaintenanceIntervalHours:  24,
	}
}

// StorageConfig defines the persistence store location.
type StorageConfig struct {
	DatabasePath string `json:"database_path,omitempty" yaml:"database_path,omitempty"`
}

// NewDefaultStorageConfig creates default storage configuration.
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DatabasePath: "database/clarifi.db",
	}
}

// PublisherConfig defines the Redis delivery sink. When Enabled is false the
// engine runs with a no-op sink.
type PublisherConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" validate:"required_if=Enabled true"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty" validate:"omitempty,min=0"`
	ChannelPrefix string `json:"channel_prefix,omitempty" yaml:"channel_prefix,omitempty"`
}

// NewDefaultPublisherConfig creates default publisher configuration.
func NewDefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		Enabled:       false,
		RedisAddr:     "localhost:6379",
		ChannelPrefix: "clarifi:updates",
	}
}

// AIConfig defines the optional describe-change collaborator.
type AIConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	APIKey         string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model          string `json:"model,omitempty" yaml:"model,omitempty"`
	MaxTokens      int    `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" validate:"omitempty,min=1"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultAIConfig creates default AI configuration.
func NewDefaultAIConfig() AIConfig {
	return AIConfig{
		Enabled:        false,
		Model:          "claude-3-5-haiku-latest",
		MaxTokens:      512,
		TimeoutSeconds: 20,
	}
}

// LimiterConfig defines the system resource guard for the worker pool.
type LimiterConfig struct {
	Enabled     bool `json:"enabled" yaml:"enabled"`
	MaxMemoryMB int  `json:"max_memory_mb,omitempty" yaml:"max_memory_mb,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultLimiterConfig creates default resource limiter configuration.
func NewDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Enabled:     false,
		MaxMemoryMB: 1024,
	}
}
