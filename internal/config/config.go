package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Harvest configuration
	Harvest HarvestConfig `mapstructure:"harvest"`

	// Storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// HarvestConfig holds crawl-specific configuration
type HarvestConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Competition     string        `mapstructure:"competition"`
	StartYear       int           `mapstructure:"start_year"`
	EndYear         int           `mapstructure:"end_year"`
	RequestDelay    time.Duration `mapstructure:"request_delay"`
	SeasonDelay     time.Duration `mapstructure:"season_delay"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	FollowRobotsTxt bool          `mapstructure:"follow_robots_txt"`
}

// StorageConfig holds output destinations
type StorageConfig struct {
	InjuriesPath  string `mapstructure:"injuries_path"`
	MatchlogsPath string `mapstructure:"matchlogs_path"`
	LogPath       string `mapstructure:"log_path"`
	SummaryPath   string `mapstructure:"summary_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("$HOME/.eplharvest")
	}

	setDefaults()

	// Nested keys map to env names with underscores, e.g.
	// harvest.start_year reads EPLHARVEST_HARVEST_START_YEAR.
	viper.SetEnvPrefix("EPLHARVEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file not found is not an error, defaults and env apply
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Harvest defaults
	viper.SetDefault("harvest.base_url", "https://www.transfermarkt.com")
	viper.SetDefault("harvest.competition", "GB1")
	viper.SetDefault("harvest.start_year", 2015)
	viper.SetDefault("harvest.end_year", 2024)
	viper.SetDefault("harvest.request_delay", "3s")
	viper.SetDefault("harvest.season_delay", "30s")
	viper.SetDefault("harvest.timeout", "30s")
	viper.SetDefault("harvest.user_agent", "")
	viper.SetDefault("harvest.follow_robots_txt", true)

	// Storage defaults
	viper.SetDefault("storage.injuries_path", "epl_injuries.csv")
	viper.SetDefault("storage.matchlogs_path", "epl_matchlogs.csv")
	viper.SetDefault("storage.log_path", "harvest.log")
	viper.SetDefault("storage.summary_path", "")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Harvest.BaseURL == "" {
		return fmt.Errorf("harvest.base_url must be set")
	}
	if c.Harvest.Competition == "" {
		return fmt.Errorf("harvest.competition must be set")
	}
	if c.Harvest.StartYear > c.Harvest.EndYear {
		return fmt.Errorf("harvest.start_year %d is after harvest.end_year %d",
			c.Harvest.StartYear, c.Harvest.EndYear)
	}
	if c.Harvest.RequestDelay < 0 || c.Harvest.SeasonDelay < 0 {
		return fmt.Errorf("harvest delays must not be negative")
	}
	if c.Storage.InjuriesPath == "" || c.Storage.MatchlogsPath == "" {
		return fmt.Errorf("storage output paths must be set")
	}
	if c.Storage.LogPath == "" {
		return fmt.Errorf("storage.log_path must be set")
	}
	return nil
}
