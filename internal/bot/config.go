package bot

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// Config holds the bot configuration loaded from environment variables.
type Config struct {
	APIID   int32  `env:"API_ID,notEmpty"`
	APIHash string `env:"API_HASH,notEmpty"`

	BotToken string `env:"BOT_TOKEN,notEmpty"`
	MongoURL string `env:"MONGO_URL,notEmpty"`

	// Assistant userbot session strings. At least one is required: the
	// assistant is the account that joins voice calls and streams media.
	Session1 string `env:"SESSION1"`
	Session2 string `env:"SESSION2"`
	Session3 string `env:"SESSION3"`

	LoggerID int64 `env:"LOGGER_ID"`
	OwnerID  int64 `env:"OWNER_ID"`

	// Download backends.
	APIURL              string `env:"API_URL"`
	SpotifyDLURL        string `env:"SPI_URL" envDefault:"https://downloader.space/spotify/dl"`
	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`

	QueueLimit      int    `env:"QUEUE_LIMIT" envDefault:"20"`
	DurationLimit   int    `env:"DURATION_LIMIT" envDefault:"60"` // minutes
	DownloadsDir    string `env:"DOWNLOADS_DIR" envDefault:"downloads"`
	VideoPlay       bool   `env:"VIDEO_PLAY" envDefault:"true"`
	AutoLeave       bool   `env:"AUTO_LEAVE" envDefault:"false"`
	SupportChatLink string `env:"SUPPORT_CHAT" envDefault:"https://t.me"`
}

// ErrNoSessions is returned when no assistant session string is configured.
var ErrNoSessions = errors.New("at least one assistant session (SESSION1) is required")

// LoadConfig loads configuration from environment variables.
// Returns an error if required fields are missing.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if len(cfg.Sessions()) == 0 {
		return nil, ErrNoSessions
	}

	return cfg, nil
}

// Sessions returns the configured assistant session strings in order,
// skipping unset slots.
func (c *Config) Sessions() []string {
	sessions := make([]string, 0, 3)
	for _, s := range []string{c.Session1, c.Session2, c.Session3} {
		if s != "" {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

// DurationLimitSeconds returns the per-track duration cap in seconds.
func (c *Config) DurationLimitSeconds() int {
	return c.DurationLimit * 60
}
