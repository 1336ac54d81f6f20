package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken  string  `envconfig:"BOT_TOKEN" required:"true"`
	DBPath    string  `envconfig:"DB_PATH" default:"./data/herding.db"`
	ChannelID int64   `envconfig:"CHANNEL_ID" required:"true"` // the single chat whose messages are ingested
	AdminIDs  []int64 `envconfig:"ADMIN_IDS"`                  // users allowed to run privileged commands
	ReportTZ  string  `envconfig:"REPORT_TZ" default:"Europe/Moscow"`
	UnitPrice float64 `envconfig:"UNIT_PRICE" default:"25"` // currency per egg/milk unit in reports
	LogLevel  string  `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr  string  `envconfig:"HTTP_ADDR" default:":8080"` // healthz
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// IsAdmin reports whether the given user id may run privileged commands.
func (c Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
