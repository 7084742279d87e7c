package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment overrides, e.g. FLASHDECK_STORE_DRIVER
const EnvPrefix = "FLASHDECK_"

// Config is the application configuration
type Config struct {
	Profile  string         `koanf:"profile" validate:"required"`
	Store    StoreConfig    `koanf:"store"`
	Bot      BotConfig      `koanf:"bot"`
	AI       AIConfig       `koanf:"ai"`
	Reminder ReminderConfig `koanf:"reminder"`
	Quiz     QuizConfig     `koanf:"quiz"`
	Log      LogConfig      `koanf:"log"`
}

// StoreConfig selects the key/value backend
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite3 sqlite postgres memory"`
	DSN    string `koanf:"dsn" validate:"required_unless=Driver memory"`
}

// BotConfig configures the Telegram bot
type BotConfig struct {
	Token string  `koanf:"token"`
	Debug bool    `koanf:"debug"`
	Rate  float64 `koanf:"rate" validate:"gt=0"` // outgoing messages per second
}

// AIConfig configures remote content generation
type AIConfig struct {
	Key      string        `koanf:"key"`
	Model    string        `koanf:"model" validate:"required"`
	BaseURL  string        `koanf:"baseurl" validate:"omitempty,url"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
	Cooldown time.Duration `koanf:"cooldown" validate:"gte=0"`
}

// ReminderConfig configures the daily study reminder
type ReminderConfig struct {
	Enabled bool `koanf:"enabled"`
	Hour    int  `koanf:"hour" validate:"min=0,max=23"` // UTC
}

// QuizConfig configures quiz sessions
type QuizConfig struct {
	Seconds int `koanf:"seconds" validate:"min=5,max=120"`
}

// QuestionTime returns the per-question time limit
func (q QuizConfig) QuestionTime() time.Duration {
	return time.Duration(q.Seconds) * time.Second
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// ErrNoBotToken is returned when the bot is started without a token
var ErrNoBotToken = errors.New("telegram bot token is not set (bot.token, FLASHDECK_BOT_TOKEN or TELEGRAM_BOT_TOKEN)")

// RegisterFlags adds every configuration flag with its default to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML configuration file")
	fs.String("profile", "local", "learner profile (key namespace) used by the CLI commands")
	fs.String("store.driver", "sqlite3", "storage driver: sqlite3, sqlite, postgres or memory")
	fs.String("store.dsn", "data/flashdeck.db", "storage data source name")
	fs.String("bot.token", "", "Telegram bot token")
	fs.Bool("bot.debug", false, "log Telegram API traffic")
	fs.Float64("bot.rate", 20, "maximum outgoing Telegram messages per second")
	fs.String("ai.key", "", "OpenAI API key")
	fs.String("ai.model", "gpt-4o-mini", "chat model used to generate flashcards")
	fs.String("ai.baseurl", "", "OpenAI compatible API base URL")
	fs.Duration("ai.timeout", 90*time.Second, "generation request timeout")
	fs.Duration("ai.cooldown", time.Minute, "minimum time between generations per profile")
	fs.Bool("reminder.enabled", true, "send a daily reminder to chats that have not studied")
	fs.Int("reminder.hour", 18, "hour of the daily reminder (UTC)")
	fs.Int("quiz.seconds", 15, "seconds per quiz question")
	fs.String("log.level", "info", "log level: debug, info, warn or error")
	fs.String("log.format", "text", "log format: text or json")
}

// Load builds the configuration from, in increasing precedence: flag
// defaults, the YAML file, .env and the environment, and flags set on the
// command line
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, pkgerrors.Wrap(err, "failed to load .env")
	}

	k := koanf.New(".")

	if path, _ := flags.GetString("config"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, pkgerrors.Wrapf(err, "config file %s", path)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to parse config file %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read environment")
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read flags")
	}

	// variable names used by earlier deployments
	legacy := map[string]string{
		"bot.token": "TELEGRAM_BOT_TOKEN",
		"ai.key":    "OPENAI_API_KEY",
	}
	for key, name := range legacy {
		if k.String(key) != "" {
			continue
		}
		if v := os.Getenv(name); v != "" {
			if err := k.Set(key, v); err != nil {
				return nil, pkgerrors.Wrapf(err, "failed to set %s", key)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps FLASHDECK_STORE_DRIVER to store.driver
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

// Validate checks every field constraint
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return pkgerrors.Wrap(err, "invalid configuration")
	}
	return nil
}

// ValidateBot checks the settings required to run the bot
func (c *Config) ValidateBot() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return ErrNoBotToken
	}
	return nil
}
