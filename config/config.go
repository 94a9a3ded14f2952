package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/angas/tibberwatch-go/hours"
	"github.com/angas/tibberwatch-go/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
}

type AppConfigDatabase struct {
	Path string
	// How many days daily backup files should be stored before they gets deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 90
	}
	return *d.BackupRetentionDays
}

type AppConfigTibber struct {
	ApiToken string `mapstructure:"api_token"` // Personal access token from developer.tibber.com
	// How often prices are refreshed, default: 15. An extra refresh
	// always runs shortly after every hour boundary.
	UpdateIntervalMinutes *int `mapstructure:"update_interval_minutes"`
}

func (t AppConfigTibber) GetUpdateIntervalMinutes() int {
	if t.UpdateIntervalMinutes == nil || *t.UpdateIntervalMinutes < 1 {
		return 15
	}
	return *t.UpdateIntervalMinutes
}

type AppConfigAnalytics struct {
	// Window length for "best N hours" and the N cheapest/most expensive hours, default: 3
	HoursDuration *int `mapstructure:"hours_duration"`
	// Battery round-trip efficiency in percent (1-100), default: 75
	BatteryEfficiency *float64 `mapstructure:"battery_efficiency"`
	// Daily clock-time band for the constrained cheap-hour search,
	// HH:MM, may wrap past midnight. Default: the whole day.
	WindowStart *string `mapstructure:"window_start"`
	WindowEnd   *string `mapstructure:"window_end"`
}

func (a AppConfigAnalytics) GetHoursDuration() int {
	if a.HoursDuration == nil || *a.HoursDuration < 1 {
		return 3
	}
	return *a.HoursDuration
}

func (a AppConfigAnalytics) GetBatteryEfficiency() float64 {
	if a.BatteryEfficiency == nil {
		return 75
	}
	return *a.BatteryEfficiency
}

func (a AppConfigAnalytics) GetBand() (hours.Band, error) {
	start := "00:00"
	end := "23:59"
	if a.WindowStart != nil {
		start = *a.WindowStart
	}
	if a.WindowEnd != nil {
		end = *a.WindowEnd
	}
	return hours.ParseBand(start, end)
}

type AppConfigMqtt struct {
	Enabled  bool
	Host     string
	Port     int16
	Username string
	Password string
	// Prefix for all published topics, default: "tibberwatch"
	TopicPrefix *string `mapstructure:"topic_prefix"`
}

func (m AppConfigMqtt) GetTopicPrefix() string {
	if m.TopicPrefix == nil {
		return "tibberwatch"
	}
	return *m.TopicPrefix
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return "JSON"
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return "TEXT"
	}
	return "JSON"
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api       AppConfigApi
	Database  AppConfigDatabase
	Tibber    AppConfigTibber
	Analytics AppConfigAnalytics
	Mqtt      AppConfigMqtt
	Logging   AppConfigLogging
}

func (c *AppConfig) Validate() error {
	if c.Tibber.ApiToken == "" {
		return fmt.Errorf("tibber.api_token is required")
	}
	if eff := c.Analytics.GetBatteryEfficiency(); eff < 0 || eff > 100 {
		return fmt.Errorf("analytics.battery_efficiency must be within 0-100, got %f", eff)
	}
	if _, err := c.Analytics.GetBand(); err != nil {
		return fmt.Errorf("invalid analytics time window: %w", err)
	}
	return nil
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Watch re-reads the config file on change and hands the new config to
// onChange. Invalid edits are logged and ignored, the previous config
// stays in effect.
func Watch(onChange func(*AppConfig)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		slog.Default().Info("config file changed", slog.String("file", e.Name))

		var c AppConfig
		if err := viper.Unmarshal(&c); err != nil {
			slog.Default().Warn("ignoring config change, unmarshal failed", slog.Any("error", err))
			return
		}
		if err := c.Validate(); err != nil {
			slog.Default().Warn("ignoring config change, validation failed", slog.Any("error", err))
			return
		}
		onChange(&c)
	})
	viper.WatchConfig()
}
