package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Kafka           KafkaConfig           `mapstructure:"kafka"`
	Log             LogConfig             `mapstructure:"log"`
	Minio           MinioConfig           `mapstructure:"minio"`
	Pipeline        PipelineConfig        `mapstructure:"pipeline"`
	Worker          WorkerConfig          `mapstructure:"worker"`
	ServiceRegistry ServiceRegistryConfig `mapstructure:"service_registry"`
	Public          PublicConfig          `mapstructure:"public"`
}

// ServerConfig HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig MySQL configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig Redis configuration (execution locks).
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
}

// KafkaConfig Kafka configuration (submission intake).
type KafkaConfig struct {
	BootstrapServers     []string          `mapstructure:"bootstrap_servers"`
	ClientID             string            `mapstructure:"client_id"`
	GroupID              string            `mapstructure:"group_id"`
	Enabled              bool              `mapstructure:"enabled"`
	Topics               KafkaTopicsConfig `mapstructure:"topics"`
	CommitOnDecodeError  bool              `mapstructure:"commit_on_decode_error"`
	CommitOnProcessError bool              `mapstructure:"commit_on_process_error"`
}

type KafkaTopicsConfig struct {
	VideoJobSubmissions string `mapstructure:"videojob_submissions"`
}

// ServiceRegistryConfig registration configuration.
type ServiceRegistryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoints       []string      `mapstructure:"endpoints"`
	ServiceName     string        `mapstructure:"service_name"`
	ServiceID       string        `mapstructure:"service_id"`
	RegisterHost    string        `mapstructure:"register_host"`
	TTL             time.Duration `mapstructure:"ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// MinioConfig object storage configuration (finished artifacts).
type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// PublicConfig external access configuration.
type PublicConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	StorageBase string `mapstructure:"storage_base"`
}

// LaneConfig names the three priority lanes. Each value may be overridden via
// the HIGH_PRIORITY_QUEUE / MEDIUM_PRIORITY_QUEUE / LOW_PRIORITY_QUEUE
// environment variables.
type LaneConfig struct {
	High   string `mapstructure:"high"`
	Medium string `mapstructure:"medium"`
	Low    string `mapstructure:"low"`
}

// PipelineConfig collects every knob of the generation pipeline so drivers and
// the worker never reach into the environment directly.
type PipelineConfig struct {
	MaxConcurrentJobs    int           `mapstructure:"max_concurrent_jobs"`
	StaleThreshold       time.Duration `mapstructure:"stale_threshold"`
	LockTTL              time.Duration `mapstructure:"lock_ttl"`
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	ReleaseDelay         time.Duration `mapstructure:"release_delay"`
	RetryBackoff         time.Duration `mapstructure:"retry_backoff"`
	MaxAttempts          int           `mapstructure:"max_attempts"`
	RetryWindow          time.Duration `mapstructure:"retry_window"`
	AttemptTimeout       time.Duration `mapstructure:"attempt_timeout"`
	SubprocessTimeout    time.Duration `mapstructure:"subprocess_timeout"`
	UniqueFor            time.Duration `mapstructure:"unique_for"`
	Lanes                LaneConfig    `mapstructure:"lanes"`
	ProcessedPath        string        `mapstructure:"processed_path"`
	PreviewPath          string        `mapstructure:"preview_path"`
	DeforumAPIBase       string        `mapstructure:"deforum_api_base"`
	DeforumProcessorPath string        `mapstructure:"deforum_processor_path"`
	Vid2VidScriptPath    string        `mapstructure:"vid2vid_script_path"`
	SettingsTemplatePath string        `mapstructure:"settings_template_path"`
	PromptSuffix         string        `mapstructure:"prompt_suffix"`
	NegativePromptSuffix string        `mapstructure:"negative_prompt_suffix"`
}

// WorkerConfig controls the in-process job workers.
type WorkerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	WorkerID            string        `mapstructure:"worker_id"`
	WorkerCount         int           `mapstructure:"worker_count"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// LogConfig logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads and unmarshals the configuration file.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("service_registry.enabled", true)
	viper.SetDefault("kafka.enabled", true)
	viper.SetDefault("kafka.client_id", "videogen-service")
	viper.SetDefault("kafka.group_id", "videogen-service-group")
	viper.SetDefault("kafka.bootstrap_servers", []string{"localhost:29092"})
	viper.SetDefault("kafka.topics.videojob_submissions", "videojobs.submissions")
	viper.SetDefault("kafka.commit_on_decode_error", true)
	viper.SetDefault("kafka.commit_on_process_error", false)

	// Lane names keep their historical environment overrides.
	viper.SetDefault("pipeline.lanes.high", "high")
	viper.SetDefault("pipeline.lanes.medium", "medium")
	viper.SetDefault("pipeline.lanes.low", "low")
	_ = viper.BindEnv("pipeline.lanes.high", "HIGH_PRIORITY_QUEUE")
	_ = viper.BindEnv("pipeline.lanes.medium", "MEDIUM_PRIORITY_QUEUE")
	_ = viper.BindEnv("pipeline.lanes.low", "LOW_PRIORITY_QUEUE")

	viper.SetEnvPrefix("GO_VIDEOGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize fills in defaults for anything the file left out.
func (c *Config) normalize() {
	if c.Minio.AccessKeyID == "" {
		c.Minio.AccessKeyID = c.Minio.AccessKey
	}
	if c.Minio.SecretAccessKey == "" {
		c.Minio.SecretAccessKey = c.Minio.SecretKey
	}

	c.Pipeline.normalize()

	if c.Worker.WorkerCount <= 0 {
		c.Worker.WorkerCount = 1
	}
	if c.Worker.QueueCapacity <= 0 {
		c.Worker.QueueCapacity = 100
	}
	if c.Worker.ShutdownGracePeriod == 0 {
		c.Worker.ShutdownGracePeriod = 10 * time.Second
	}
	if c.Worker.WorkerID == "" {
		c.Worker.WorkerID = "videogen-worker"
	}

	if c.ServiceRegistry.ServiceName == "" {
		c.ServiceRegistry.ServiceName = "videogen-service"
	}
	if c.ServiceRegistry.TTL == 0 {
		c.ServiceRegistry.TTL = 30 * time.Second
	}
	if c.ServiceRegistry.RefreshInterval == 0 {
		c.ServiceRegistry.RefreshInterval = 10 * time.Second
	}
	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:29092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "videogen-service"
	}
}

// normalize applies the pipeline defaults. MaxConcurrentJobs may be set to a
// negative value to disable the cap entirely; zero means "use the default".
func (p *PipelineConfig) normalize() {
	if p.MaxConcurrentJobs == 0 {
		p.MaxConcurrentJobs = 1
	}
	if p.StaleThreshold <= 0 {
		p.StaleThreshold = 15 * time.Minute
	}
	if p.LockTTL <= 0 {
		p.LockTTL = 30 * time.Minute
	}
	if p.PollInterval <= 0 {
		p.PollInterval = 5 * time.Second
	}
	if p.ReleaseDelay <= 0 {
		p.ReleaseDelay = 10 * time.Second
	}
	if p.RetryBackoff <= 0 {
		p.RetryBackoff = 30 * time.Second
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 200
	}
	if p.RetryWindow <= 0 {
		p.RetryWindow = 24 * time.Hour
	}
	if p.AttemptTimeout <= 0 {
		p.AttemptTimeout = 27200 * time.Second
	}
	if p.SubprocessTimeout <= 0 {
		p.SubprocessTimeout = 2 * time.Hour
	}
	if p.UniqueFor <= 0 {
		p.UniqueFor = time.Hour
	}
	if p.Lanes.High == "" {
		p.Lanes.High = "high"
	}
	if p.Lanes.Medium == "" {
		p.Lanes.Medium = "medium"
	}
	if p.Lanes.Low == "" {
		p.Lanes.Low = "low"
	}
	if p.ProcessedPath == "" {
		p.ProcessedPath = "/var/lib/videogen/processed"
	}
	if p.PreviewPath == "" {
		p.PreviewPath = "/var/lib/videogen/preview"
	}
	if p.DeforumAPIBase == "" {
		p.DeforumAPIBase = "http://127.0.0.1:7860"
	}
}

// GetDSN builds the MySQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// GetRedisAddr returns the host:port Redis address.
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

var globalConfig *Config

// SetGlobalConfig stores the process-wide configuration. Must be called once
// during startup before resources are opened.
func SetGlobalConfig(cfg *Config) {
	globalConfig = cfg
}

// GetGlobalConfig returns the process-wide configuration.
func GetGlobalConfig() *Config {
	return globalConfig
}
