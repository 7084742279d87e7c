package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/example/flashdeck/internal/ai"
	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/keystore"
	"github.com/example/flashdeck/internal/quiz"
	"github.com/example/flashdeck/internal/scheduler"
	"github.com/example/flashdeck/internal/study"
	"github.com/example/flashdeck/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// chatsKey holds the ids of every chat that ever talked to the bot
const chatsKey = "flashdeck:chats"

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// telegramClient is the part of the Telegram API used to talk to chats
type telegramClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type eventKind int

const (
	eventReminder eventKind = iota
	eventQuizTimeout
	eventImport
	eventGenerated
)

// event is work finished outside the update loop and handed back to it
type event struct {
	kind       eventKind
	chatID     int64
	seq        int
	fileName   string
	data       []byte
	categories []models.Category
	err        error
}

type mode int

const (
	modeIdle mode = iota
	modeAwaitingName
	modeAwaitingImport
	modeWalk
	modeQuiz
	modeWriting
)

// chat is the conversation state of one Telegram chat
type chat struct {
	id    int64
	study *study.Controller
	mode  mode

	walk        *quiz.Walk
	walkMessage int

	quiz      *quiz.Quiz
	quizSeq   int
	quizTimer *time.Timer

	writing *quiz.Writing
}

// Bot represents the Telegram bot application. Updates, quiz timers and
// reminders are all handled by the goroutine running Run.
type Bot struct {
	api        *tgbotapi.BotAPI
	client     telegramClient
	store      keystore.KeyStore
	config     *BotConfig
	log        *slog.Logger
	limiter    *rate.Limiter
	rnd        *rand.Rand
	generator  *ai.Generator
	cooldown   *ai.Cooldown
	scheduler  *scheduler.Scheduler
	httpClient *http.Client

	chats  map[int64]*chat
	known  map[int64]struct{}
	events chan event
	done   chan struct{}
}

// New creates a new bot instance. generator may be nil when AI generation
// is not configured.
func New(config *BotConfig, store keystore.KeyStore, generator *ai.Generator, logger *slog.Logger) (*Bot, error) {
	if strings.TrimSpace(config.Token) == "" {
		return nil, errors.New("telegram bot token is not set")
	}

	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	api.Debug = config.Debug

	b := newBot(api, store, generator, config, logger)
	b.api = api
	return b, nil
}

func newBot(client telegramClient, store keystore.KeyStore, generator *ai.Generator, config *BotConfig, logger *slog.Logger) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	burst := max(1, int(config.Rate))
	return &Bot{
		client:     client,
		store:      store,
		config:     config,
		log:        logger,
		limiter:    rate.NewLimiter(rate.Limit(config.Rate), burst),
		rnd:        deck.NewRand(),
		generator:  generator,
		cooldown:   ai.NewCooldown(config.GenerationCooldown),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		chats:      make(map[int64]*chat),
		known:      make(map[int64]struct{}),
		events:     make(chan event, 64),
		done:       make(chan struct{}),
	}
}

// Run receives updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	defer close(b.done)

	if err := b.loadChats(ctx); err != nil {
		return err
	}

	if b.config.RemindersEnabled {
		b.scheduler = scheduler.New(b, b.config.ReminderHour, b.log)
		if err := b.scheduler.Start(); err != nil {
			return err
		}
		defer b.scheduler.Stop()
	}

	// Set up the update configuration
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)
	defer b.api.StopReceivingUpdates()
	b.log.Info("authorized on account", "account", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.log.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		case ev := <-b.events:
			b.handleEvent(ctx, ev)
		}
	}
}

// SendReminders implements the scheduler.Notifier interface. The reminders
// themselves are sent from the update loop.
func (b *Bot) SendReminders() error {
	b.post(event{kind: eventReminder})
	return nil
}

// post hands an event to the update loop
func (b *Bot) post(ev event) {
	select {
	case b.events <- ev:
	case <-b.done:
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var (
		chatID int64
		err    error
	)
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
		err = b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		chatID = update.Message.Chat.ID
		err = b.handleMessage(ctx, update.Message)
	default:
		return
	}
	if err != nil {
		b.log.Error("failed to handle update", "chat_id", chatID, "error", err)
		b.sendText(ctx, chatID, "⚠️ Something went wrong. Please try again.")
	}
}

func (b *Bot) handleEvent(ctx context.Context, ev event) {
	var err error
	switch ev.kind {
	case eventReminder:
		b.remind(ctx)
	case eventQuizTimeout:
		err = b.handleQuizTimeout(ctx, ev)
	case eventImport:
		err = b.handleImported(ctx, ev)
	case eventGenerated:
		err = b.handleGenerated(ctx, ev)
	}
	if err != nil {
		b.log.Error("failed to handle event", "chat_id", ev.chatID, "kind", ev.kind, "error", err)
		b.sendText(ctx, ev.chatID, "⚠️ Something went wrong. Please try again.")
	}
}

// chatFor returns the state of a chat, loading its progress on first use
func (b *Bot) chatFor(ctx context.Context, id int64) *chat {
	if c, ok := b.chats[id]; ok {
		return c
	}

	prefix := keystore.ProfilePrefix(fmt.Sprintf("chat:%d", id))
	c := &chat{
		id:    id,
		study: study.New(ctx, keystore.Prefixed(b.store, prefix), study.WithLogger(b.log.With("chat_id", id))),
	}
	b.chats[id] = c
	b.remember(ctx, id)
	return c
}

func (b *Bot) loadChats(ctx context.Context) error {
	raw, ok, err := b.store.Get(ctx, chatsKey)
	if err != nil {
		return fmt.Errorf("failed to load known chats: %w", err)
	}
	if !ok {
		return nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		b.log.Warn("ignoring unreadable chat registry", "error", err)
		return nil
	}
	for _, id := range ids {
		b.known[id] = struct{}{}
	}
	return nil
}

// remember adds a chat to the persisted registry used for reminders
func (b *Bot) remember(ctx context.Context, id int64) {
	if _, ok := b.known[id]; ok {
		return
	}
	b.known[id] = struct{}{}

	data, err := json.Marshal(b.knownChats())
	if err == nil {
		err = b.store.Set(ctx, chatsKey, string(data))
	}
	if err != nil {
		b.log.Error("failed to save chat registry", "chat_id", id, "error", err)
	}
}

func (b *Bot) knownChats() []int64 {
	ids := make([]int64, 0, len(b.known))
	for id := range b.known {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// remind messages every known learner who has not studied today
func (b *Bot) remind(ctx context.Context) {
	sent := 0
	for _, id := range b.knownChats() {
		c := b.chatFor(ctx, id)
		name := c.study.DisplayName()
		if name == "" || c.study.StudiedToday() {
			continue
		}
		text := fmt.Sprintf("👋 %s, you have not practised today yet. A few cards keep the words fresh: /spaced", name)
		if b.sendText(ctx, id, text) == nil {
			sent++
		}
	}
	b.log.Info("sent study reminders", "count", sent)
}

// send passes every outgoing message through the rate limiter
func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return tgbotapi.Message{}, err
	}
	return b.client.Send(c)
}

func (b *Bot) sendMessage(ctx context.Context, msg tgbotapi.MessageConfig) (tgbotapi.Message, error) {
	sent, err := b.send(ctx, msg)
	if err != nil {
		b.log.Error("failed to send message", "chat_id", msg.ChatID, "error", err)
	}
	return sent, err
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string) error {
	_, err := b.sendMessage(ctx, tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) sendHTML(ctx context.Context, chatID int64, text string, buttons [][]MenuButton) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if buttons != nil {
		msg.ReplyMarkup = createKeyboard(buttons)
	}
	return b.sendMessage(ctx, msg)
}

func (b *Bot) editHTML(ctx context.Context, chatID int64, messageID int, text string, buttons [][]MenuButton) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, createKeyboard(buttons))
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := b.send(ctx, edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.client.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Warn("failed to answer callback", "error", err)
	}
}

// download fetches an uploaded file
func (b *Bot) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, int64(b.config.MaxImportSize)+1))
}
