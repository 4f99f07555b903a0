package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Asana    AsanaConfig    `mapstructure:"asana"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	WebhookPath  string        `mapstructure:"webhook_path"`
}

// AsanaConfig holds Asana API configuration
type AsanaConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	PAT            string        `mapstructure:"pat"`
	WorkspaceGID   string        `mapstructure:"workspace_gid"`
	ProjectGID     string        `mapstructure:"project_gid"`
	StatusFieldGID string        `mapstructure:"status_field_gid"`
	TargetURL      string        `mapstructure:"target_url"`
	WebhookSecret  string        `mapstructure:"webhook_secret"`
	APITimeout     time.Duration `mapstructure:"api_timeout"`
}

// LarkConfig holds Lark messaging configuration
type LarkConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	ChatID    string `mapstructure:"chat_id"`
}

// ScoringConfig holds scoring workbook configuration
type ScoringConfig struct {
	WorkbookPath string `mapstructure:"workbook_path"`
	SheetName    string `mapstructure:"sheet_name"`
}

// RulesConfig holds rule-handler configuration
type RulesConfig struct {
	ProjectManagers []string      `mapstructure:"project_managers"`
	MatchThreshold  int           `mapstructure:"match_threshold"`
	HandlerTimeout  time.Duration `mapstructure:"handler_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.webhook_path", "/asana-webhook")

	// Asana defaults
	viper.SetDefault("asana.base_url", "https://app.asana.com/api/1.0")
	viper.SetDefault("asana.api_timeout", 30*time.Second)

	// Scoring defaults
	viper.SetDefault("scoring.workbook_path", "data/project_scoring.xlsx")
	viper.SetDefault("scoring.sheet_name", "Project Scoring")

	// Rules defaults
	viper.SetDefault("rules.project_managers", []string{})
	viper.SetDefault("rules.match_threshold", 70)
	viper.SetDefault("rules.handler_timeout", 2*time.Minute)

	// Database defaults
	viper.SetDefault("database.path", "data/automation.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("asana.pat", "ASANA_PAT")
	viper.BindEnv("asana.workspace_gid", "WORKSPACE_GID")
	viper.BindEnv("asana.project_gid", "PROJECT_GID")
	viper.BindEnv("asana.status_field_gid", "CUSTOM_FIELD_GID")
	viper.BindEnv("asana.target_url", "TARGET_URL")
	viper.BindEnv("asana.webhook_secret", "WEBHOOK_SECRET")
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("lark.chat_id", "LARK_CHAT_ID")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate Asana credentials and identifiers
	if c.Asana.PAT == "" {
		return fmt.Errorf("asana.pat is required")
	}
	if c.Asana.WorkspaceGID == "" {
		return fmt.Errorf("asana.workspace_gid is required")
	}
	if c.Asana.ProjectGID == "" {
		return fmt.Errorf("asana.project_gid is required")
	}
	if c.Asana.StatusFieldGID == "" {
		return fmt.Errorf("asana.status_field_gid is required")
	}

	// Validate Lark credentials
	if c.Lark.AppID == "" {
		return fmt.Errorf("lark.app_id is required")
	}
	if c.Lark.AppSecret == "" {
		return fmt.Errorf("lark.app_secret is required")
	}
	if c.Lark.ChatID == "" {
		return fmt.Errorf("lark.chat_id is required")
	}

	// Validate scoring config
	if c.Scoring.WorkbookPath == "" {
		return fmt.Errorf("scoring.workbook_path is required")
	}
	if c.Scoring.SheetName == "" {
		return fmt.Errorf("scoring.sheet_name is required")
	}

	if c.Rules.MatchThreshold < 0 || c.Rules.MatchThreshold > 100 {
		return fmt.Errorf("rules.match_threshold must be between 0 and 100")
	}

	return nil
}
