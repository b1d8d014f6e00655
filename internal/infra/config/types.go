package config

import "time"

// Config represents the complete application configuration.
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Auth        AuthConfig       `mapstructure:"auth"`
	Storage     StorageConfig    `mapstructure:"storage"`
	Embedding   EmbeddingConfig  `mapstructure:"embedding"`
	Chat        ChatConfig       `mapstructure:"chat"`
	Processing  ProcessingConfig `mapstructure:"processing"`
	Scheduler   SchedulerConfig  `mapstructure:"scheduler"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

// SchedulerConfig controls the background scheduler that runs registry
// refresh, the stuck-job sweep, and the orphaned-blob collector.
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// ReadTimeoutDuration returns the read timeout as time.Duration.
func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the write timeout as time.Duration.
func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// ShutdownTimeoutDuration returns the shutdown timeout as time.Duration.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxPoolSize        int    `mapstructure:"max_pool_size"`
	MinPoolSize        int    `mapstructure:"min_pool_size"`
	MaxIdleTimeSeconds int    `mapstructure:"max_idle_time_seconds"`
}

// MaxIdleTimeDuration returns the max idle time as time.Duration.
func (d DatabaseConfig) MaxIdleTimeDuration() time.Duration {
	return time.Duration(d.MaxIdleTimeSeconds) * time.Second
}

// AuthConfig holds JWT/JWKS authentication configuration.
type AuthConfig struct {
	JWKSURL  string `mapstructure:"jwks_url"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

// StorageConfig holds S3/MinIO storage configuration for source blobs.
type StorageConfig struct {
	Bucket                        string `mapstructure:"bucket"`
	Region                        string `mapstructure:"region"`
	Endpoint                      string `mapstructure:"endpoint"`
	GarbageCollectionIntervalSecs int    `mapstructure:"gc_interval_seconds"`
	GarbageCollectionGraceSecs    int    `mapstructure:"gc_grace_seconds"`
}

// GarbageCollectionInterval returns the GC sweep period as time.Duration.
func (s StorageConfig) GarbageCollectionInterval() time.Duration {
	return time.Duration(s.GarbageCollectionIntervalSecs) * time.Second
}

// GarbageCollectionGrace returns the GC grace period as time.Duration.
func (s StorageConfig) GarbageCollectionGrace() time.Duration {
	return time.Duration(s.GarbageCollectionGraceSecs) * time.Second
}

// EmbeddingConfig holds embedding-provider configuration.
type EmbeddingConfig struct {
	Provider          string `mapstructure:"provider"`
	OpenAIAPIKey      string `mapstructure:"openai_api_key"`
	OpenAIModel       string `mapstructure:"openai_model"`
	LocalModel        string `mapstructure:"local_model"`
	LocalBaseURL      string `mapstructure:"local_base_url"`
	BatchSize         int    `mapstructure:"batch_size"`
	SDKTimeoutSeconds int    `mapstructure:"sdk_timeout_seconds"`
	HardTimeoutSecs   int    `mapstructure:"hard_timeout_seconds"`
}

// SDKTimeout returns the provider SDK timeout as time.Duration.
func (e EmbeddingConfig) SDKTimeout() time.Duration {
	return time.Duration(e.SDKTimeoutSeconds) * time.Second
}

// HardTimeout returns the hard timeout raced against the SDK timeout.
func (e EmbeddingConfig) HardTimeout() time.Duration {
	return time.Duration(e.HardTimeoutSecs) * time.Second
}

// ChatConfig holds chat-completion provider configuration.
type ChatConfig struct {
	Provider                  string `mapstructure:"provider"`
	OpenAIAPIKey               string `mapstructure:"openai_api_key"`
	StandardModel              string `mapstructure:"standard_model"`
	ReasoningModel             string `mapstructure:"reasoning_model"`
	SummarizationTimeoutSecs   int    `mapstructure:"summarization_timeout_seconds"`
	IdleTokenTimeoutSeconds    int    `mapstructure:"idle_token_timeout_seconds"`
}

// SummarizationTimeout returns the summarization call timeout.
func (c ChatConfig) SummarizationTimeout() time.Duration {
	return time.Duration(c.SummarizationTimeoutSecs) * time.Second
}

// IdleTokenTimeout returns the per-token idle timeout during streaming.
func (c ChatConfig) IdleTokenTimeout() time.Duration {
	return time.Duration(c.IdleTokenTimeoutSeconds) * time.Second
}

// ModelFor returns the configured reasoning model identifier when reasoning
// is true, and the standard model identifier otherwise.
func (c ChatConfig) ModelFor(reasoning bool) string {
	if reasoning {
		return c.ReasoningModel
	}
	return c.StandardModel
}

// ProcessingConfig holds ingestion pipeline and concurrency configuration.
type ProcessingConfig struct {
	MaxConcurrent               int     `mapstructure:"max_concurrent"`
	RegistryRefreshPeriodSecs   int     `mapstructure:"registry_refresh_period_seconds"`
	StuckThresholdSecs          int     `mapstructure:"stuck_threshold_seconds"`
	StuckSweepIntervalSecs      int     `mapstructure:"stuck_sweep_interval_seconds"`
	SimilarityFloor             float64 `mapstructure:"similarity_floor"`
	SystemChunkLimit            int     `mapstructure:"system_chunk_limit"`
}

// RegistryRefreshPeriod returns the registry's background refresh period.
func (p ProcessingConfig) RegistryRefreshPeriod() time.Duration {
	return time.Duration(p.RegistryRefreshPeriodSecs) * time.Second
}

// StuckThreshold returns the age past which a processing job is deemed stuck.
func (p ProcessingConfig) StuckThreshold() time.Duration {
	return time.Duration(p.StuckThresholdSecs) * time.Second
}

// StuckSweepInterval returns how often the stuck-job sweep runs.
func (p ProcessingConfig) StuckSweepInterval() time.Duration {
	return time.Duration(p.StuckSweepIntervalSecs) * time.Second
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
