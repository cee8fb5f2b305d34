// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	WhatsApp WhatsAppConfig `mapstructure:"whatsapp"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Reports  ReportsConfig  `mapstructure:"reports"`
	Branding BrandingConfig `mapstructure:"branding"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	BaseURL     string `mapstructure:"base_url"` // public URL used in notification links
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// SMTPConfig holds the email transport settings.
type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	UseTLS      bool   `mapstructure:"use_tls"`
	DefaultFrom string `mapstructure:"default_from"`
}

// WhatsAppConfig holds the messaging-gateway settings.
type WhatsAppConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	Timeout       int    `mapstructure:"timeout"`         // milliseconds
	PostSendPause int    `mapstructure:"post_send_pause"` // milliseconds, gateway rate-limit courtesy
}

// OpenAIConfig holds the narrative-generation credentials.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// ReportsConfig holds filesystem locations for artifacts and snapshots.
type ReportsConfig struct {
	OutputDir string `mapstructure:"output_dir"` // rendered PDF artifacts
	DataDir   string `mapstructure:"data_dir"`   // fallback snapshot files
}

// BrandingConfig holds company strings rendered into reports and messages.
type BrandingConfig struct {
	CompanyName  string `mapstructure:"company_name"`
	Tagline      string `mapstructure:"tagline"`
	ContactEmail string `mapstructure:"contact_email"`
	ContactPhone string `mapstructure:"contact_phone"`
	Facebook     string `mapstructure:"facebook"`
	Twitter      string `mapstructure:"twitter"`
	Instagram    string `mapstructure:"instagram"`
	LinkedIn     string `mapstructure:"linkedin"`
}

// PipelineConfig holds worker-pool settings for diagnostic jobs.
type PipelineConfig struct {
	Workers    int `mapstructure:"workers"`
	QueueSize  int `mapstructure:"queue_size"`
	JobTimeout int `mapstructure:"job_timeout"` // milliseconds, per job end to end
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
