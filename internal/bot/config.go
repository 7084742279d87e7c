package bot

import (
	"time"

	"github.com/example/flashdeck/internal/quiz"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Telegram bot token
	Token string
	// Log every request made to the Telegram API
	Debug bool
	// Outgoing messages per second across all chats
	Rate float64
	// Time to answer one quiz question
	QuestionTime time.Duration
	// Minimum time between two AI generations in one chat
	GenerationCooldown time.Duration
	// Send a daily reminder to chats that have not studied yet
	RemindersEnabled bool
	// Hour (UTC) of the daily reminder
	ReminderHour int
	// Largest accepted import document
	MaxImportSize int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		Rate:               25,
		QuestionTime:       quiz.QuestionTime,
		GenerationCooldown: time.Minute,
		RemindersEnabled:   true,
		ReminderHour:       18,
		MaxImportSize:      1 << 20,
	}
}
