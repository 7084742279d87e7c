package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

// isolate runs the test in an empty directory so no .env file is picked up
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, name := range []string{"TELEGRAM_BOT_TOKEN", "OPENAI_API_KEY"} {
		t.Setenv(name, "")
	}
	return dir
}

func TestDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Profile)
	assert.Equal(t, "sqlite3", cfg.Store.Driver)
	assert.Equal(t, "data/flashdeck.db", cfg.Store.DSN)
	assert.Equal(t, 20.0, cfg.Bot.Rate)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 90*time.Second, cfg.AI.Timeout)
	assert.Equal(t, time.Minute, cfg.AI.Cooldown)
	assert.True(t, cfg.Reminder.Enabled)
	assert.Equal(t, 18, cfg.Reminder.Hour)
	assert.Equal(t, 15*time.Second, cfg.Quiz.QuestionTime())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.ErrorIs(t, cfg.ValidateBot(), ErrNoBotToken)
}

func TestPrecedence(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "flashdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: sqlite
  dsn: from-file.db
reminder:
  hour: 7
log:
  level: debug
`), 0o644))

	t.Setenv("FLASHDECK_STORE_DSN", "from-env.db")
	t.Setenv("FLASHDECK_REMINDER_HOUR", "8")

	cfg, err := Load(newFlags(t, "--config", path, "--reminder.hour", "9"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver, "file beats default")
	assert.Equal(t, "from-env.db", cfg.Store.DSN, "env beats file")
	assert.Equal(t, 9, cfg.Reminder.Hour, "explicit flag beats env")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLegacyVariables(t *testing.T) {
	isolate(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("OPENAI_API_KEY", "sk-legacy")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Bot.Token)
	assert.Equal(t, "sk-legacy", cfg.AI.Key)
	assert.NoError(t, cfg.ValidateBot())

	t.Setenv("FLASHDECK_AI_KEY", "sk-new")
	cfg, err = Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "sk-new", cfg.AI.Key, "prefixed variable wins")
}

func TestDotEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("FLASHDECK_PROFILE", "")
	require.NoError(t, os.Unsetenv("FLASHDECK_PROFILE"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FLASHDECK_PROFILE=dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FLASHDECK_PROFILE") })

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.Profile)
}

func TestInvalid(t *testing.T) {
	isolate(t)

	tests := map[string][]string{
		"driver":  {"--store.driver", "mysql"},
		"hour":    {"--reminder.hour", "24"},
		"level":   {"--log.level", "loud"},
		"seconds": {"--quiz.seconds", "1"},
		"dsn":     {"--store.dsn", ""},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(newFlags(t, args...))
			assert.Error(t, err)
		})
	}

	_, err := Load(newFlags(t, "--store.driver", "memory", "--store.dsn", ""))
	assert.NoError(t, err, "memory store needs no dsn")
}

func TestMissingConfigFile(t *testing.T) {
	isolate(t)
	_, err := Load(newFlags(t, "--config", "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "store.driver", envKey("FLASHDECK_STORE_DRIVER"))
	assert.Equal(t, "profile", envKey("FLASHDECK_PROFILE"))
}
