package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/example/flashdeck/internal/ai"
	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/progress"
	"github.com/example/flashdeck/internal/study"
	"github.com/example/flashdeck/internal/vocabulary"
	"github.com/example/flashdeck/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type handlerFunc func(b *Bot, ctx context.Context, c *chat, args string) error

var commands = map[string]handlerFunc{
	"start":      (*Bot).handleStart,
	"name":       (*Bot).handleName,
	"menu":       (*Bot).handleMenu,
	"categories": (*Bot).handleCategories,
	"types":      (*Bot).handleTypes,
	"study":      (*Bot).handleStudy,
	"shuffle":    (*Bot).handleShuffle,
	"favorites":  (*Bot).handleFavorites,
	"spaced":     (*Bot).handleSpaced,
	"themed":     (*Bot).handleThemed,
	"quiz":       (*Bot).handleQuiz,
	"write":      (*Bot).handleWrite,
	"stats":      (*Bot).handleStats,
	"note":       (*Bot).handleNote,
	"reset":      (*Bot).handleReset,
	"import":     (*Bot).handleImport,
	"export":     (*Bot).handleExport,
	"clear":      (*Bot).handleClear,
	"edit":       (*Bot).handleEdit,
	"generate":   (*Bot).handleGenerate,
	"stop":       (*Bot).handleStop,
	"help":       (*Bot).handleHelp,
}

// commands that work before the learner has a name
var anonymous = map[string]bool{"start": true, "name": true, "help": true}

// MainMenuButtons returns the buttons for the main menu
func MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "📚 Categories", CallbackData: "menu:categories"},
			{Text: "🔀 Shuffle", CallbackData: "menu:shuffle"},
		},
		{
			{Text: "🧠 Spaced practice", CallbackData: "menu:spaced"},
			{Text: "⭐ Favorites", CallbackData: "menu:favorites"},
		},
		{
			{Text: "❓ Quiz", CallbackData: "menu:quiz"},
			{Text: "✍️ Writing", CallbackData: "menu:write"},
		},
		{
			{Text: "📊 Statistics", CallbackData: "menu:stats"},
			{Text: "📤 Export", CallbackData: "menu:export"},
		},
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	c := b.chatFor(ctx, message.Chat.ID)

	if message.Document != nil {
		return b.handleDocument(ctx, c, message.Document)
	}
	if message.IsCommand() {
		return b.runCommand(ctx, c, message.Command(), strings.TrimSpace(message.CommandArguments()))
	}

	text := strings.TrimSpace(message.Text)
	switch c.mode {
	case modeAwaitingName:
		return b.setName(ctx, c, text)
	case modeWriting:
		return b.answerWriting(ctx, c, text)
	}
	if c.study.DisplayName() == "" {
		return b.askName(ctx, c)
	}
	return b.sendText(ctx, c.id, "I don't understand. Use /menu to show the main menu.")
}

func (b *Bot) runCommand(ctx context.Context, c *chat, name, args string) error {
	handler, ok := commands[name]
	if !ok {
		return b.sendText(ctx, c.id, "Unknown command. Use /help to see what I can do.")
	}
	if !anonymous[name] && c.study.DisplayName() == "" {
		return b.askName(ctx, c)
	}
	return handler(b, ctx, c, args)
}

// handleCallback handles callback queries from buttons
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	c := b.chatFor(ctx, callback.Message.Chat.ID)
	action, arg, _ := strings.Cut(callback.Data, ":")

	var (
		notice string
		err    error
	)
	switch action {
	case "menu":
		err = b.runCommand(ctx, c, arg, "")
	case "cat":
		err = b.openCategory(ctx, c, arg)
	case "type":
		err = b.openType(ctx, c, arg)
	case "flip", "prev", "next", "fav", "knew", "miss":
		notice, err = b.walkAction(ctx, c, action, callback.Message.MessageID)
	case "quiz":
		notice, err = b.answerQuiz(ctx, c, arg)
	case "clear":
		err = b.confirmClear(ctx, c, arg == "yes")
	default:
		notice = "Unknown action"
	}
	b.answerCallback(callback.ID, notice)
	return err
}

func (b *Bot) askName(ctx context.Context, c *chat) error {
	c.mode = modeAwaitingName
	return b.sendText(ctx, c.id, "What should I call you? Send me your name.")
}

func (b *Bot) setName(ctx context.Context, c *chat, name string) error {
	if err := c.study.SetDisplayName(ctx, name); err != nil {
		if errors.Is(err, study.ErrBlankName) {
			return b.sendText(ctx, c.id, "Please send a name.")
		}
		return err
	}
	c.mode = modeIdle
	text := fmt.Sprintf("Nice to meet you, %s! 🇩🇪\n\nPick a way to study:", html.EscapeString(c.study.DisplayName()))
	_, err := b.sendHTML(ctx, c.id, text, MainMenuButtons())
	return err
}

func (b *Bot) handleStart(ctx context.Context, c *chat, _ string) error {
	name := c.study.DisplayName()
	if name == "" {
		c.mode = modeAwaitingName
		return b.sendText(ctx, c.id, "Willkommen! 👋 I will help you learn German words with flashcards, quizzes and writing practice.\n\nWhat should I call you?")
	}
	text := fmt.Sprintf("Willkommen zurück, %s! 🎓\n\nPick a way to study:", html.EscapeString(name))
	_, err := b.sendHTML(ctx, c.id, text, MainMenuButtons())
	return err
}

func (b *Bot) handleName(ctx context.Context, c *chat, args string) error {
	if args == "" {
		return b.askName(ctx, c)
	}
	return b.setName(ctx, c, args)
}

func (b *Bot) handleMenu(ctx context.Context, c *chat, _ string) error {
	_, err := b.sendHTML(ctx, c.id, "Main Menu - choose an option:", MainMenuButtons())
	return err
}

func (b *Bot) handleHelp(ctx context.Context, c *chat, _ string) error {
	text := "📖 How to use the bot\n\n" +
		"🔸 Basics:\n" +
		"/start - Start the bot and show the main menu\n" +
		"/name <name> - Change your name\n" +
		"/menu - Show the main menu\n\n" +
		"📚 Study:\n" +
		"/categories [search] [type:<type>] [fav] [len:<min>-<max>] - List categories\n" +
		"/types - Browse categories by type\n" +
		"/study <category> - Study one category\n" +
		"/shuffle - All cards in random order\n" +
		"/favorites - Your favorite cards\n" +
		"/spaced - Cards that need practice first\n" +
		"/themed <cat1,cat2> [limit] - Mix several categories\n" +
		"/quiz [n] - Multiple choice quiz (5-30 questions)\n" +
		"/write [n] - Type the German words (5-30 cards)\n" +
		"/stop - End the current session\n\n" +
		"📊 Progress:\n" +
		"/stats - Show your statistics\n" +
		"/note <text> - Add a note to this session\n" +
		"/reset - Start a new session\n\n" +
		"📝 Vocabulary:\n" +
		"/import - Import a .csv, .json or .xlsx file\n" +
		"/export [csv|json|xlsx] - Download all words\n" +
		"/edit <word>|<category>|<translation>[|sentence|sentence translation] - Edit a word\n" +
		"/edit <old word>|<old category> => <word>|<category>|<translation> - Rename or move a word\n" +
		"/clear - Remove your imported words\n" +
		"/generate - Generate example sentences with AI"
	return b.sendText(ctx, c.id, text)
}

func (b *Bot) handleCategories(ctx context.Context, c *chat, args string) error {
	filter, ok := parseCategoryArgs(args)
	if !ok {
		return b.sendText(ctx, c.id, "Usage: /categories [search] [type:<type>] [fav] [len:<min>-<max>]")
	}
	return b.listCategories(ctx, c, filter, args)
}

// handleTypes offers one button per category type
func (b *Bot) handleTypes(ctx context.Context, c *chat, _ string) error {
	types := c.study.CategoryTypes()
	if len(types) == 0 {
		return b.sendText(ctx, c.id, "There are no categories yet.")
	}

	var (
		buttons [][]MenuButton
		row     []MenuButton
	)
	for i, t := range types {
		row = append(row, MenuButton{Text: t.Label, CallbackData: fmt.Sprintf("type:%d", i)})
		if len(row) == 3 {
			buttons = append(buttons, row)
			row = nil
		}
	}
	if row != nil {
		buttons = append(buttons, row)
	}
	_, err := b.sendHTML(ctx, c.id, "🏷 Choose a category type:", buttons)
	return err
}

func (b *Bot) openType(ctx context.Context, c *chat, arg string) error {
	i, err := strconv.Atoi(arg)
	types := c.study.CategoryTypes()
	if err != nil || i < 0 || i >= len(types) {
		return b.sendText(ctx, c.id, "That type is no longer available. Use /types.")
	}
	filter := deck.DefaultFilter()
	filter.Type = types[i].Value
	return b.listCategories(ctx, c, filter, "type:"+types[i].Value)
}

func (b *Bot) listCategories(ctx context.Context, c *chat, filter deck.Filter, args string) error {
	all := c.study.Categories()
	index := make(map[string]int, len(all))
	for i, cat := range all {
		index[cat.Name] = i
	}

	matched := c.study.FilterCategories(filter)
	if len(matched) == 0 {
		return b.sendText(ctx, c.id, fmt.Sprintf("No categories match %q.", strings.TrimSpace(args)))
	}

	var (
		text    strings.Builder
		buttons [][]MenuButton
		row     []MenuButton
	)
	text.WriteString("📚 <b>Categories</b>\n\n")
	for _, cat := range matched {
		fmt.Fprintf(&text, "• %s (%d cards)\n", html.EscapeString(cat.Name), len(cat.Flashcards))
		row = append(row, MenuButton{Text: cat.Name, CallbackData: fmt.Sprintf("cat:%d", index[cat.Name])})
		if len(row) == 2 {
			buttons = append(buttons, row)
			row = nil
		}
	}
	if row != nil {
		buttons = append(buttons, row)
	}
	_, err := b.sendHTML(ctx, c.id, text.String(), buttons)
	return err
}

func (b *Bot) openCategory(ctx context.Context, c *chat, arg string) error {
	i, err := strconv.Atoi(arg)
	all := c.study.Categories()
	if err != nil || i < 0 || i >= len(all) {
		return b.sendText(ctx, c.id, "That category is no longer available. Use /categories.")
	}
	return b.startWalk(ctx, c, all[i])
}

func (b *Bot) handleStudy(ctx context.Context, c *chat, args string) error {
	if args == "" {
		return b.handleCategories(ctx, c, "")
	}
	cat, ok := c.study.Category(args)
	if !ok {
		return b.sendText(ctx, c.id, fmt.Sprintf("There is no category %q. Use /categories to see them all.", args))
	}
	return b.startWalk(ctx, c, cat)
}

func (b *Bot) handleShuffle(ctx context.Context, c *chat, _ string) error {
	return b.startWalk(ctx, c, c.study.ShuffleDeck())
}

func (b *Bot) handleFavorites(ctx context.Context, c *chat, _ string) error {
	favorites, ok := c.study.FavoritesDeck()
	if !ok {
		return b.sendText(ctx, c.id, "You have no favorite cards yet. Tap ☆ on a card to add it.")
	}
	return b.startWalk(ctx, c, favorites)
}

func (b *Bot) handleSpaced(ctx context.Context, c *chat, _ string) error {
	spaced, ok := c.study.SpacedDeck()
	if !ok {
		return b.sendText(ctx, c.id, "There are no cards to practise yet.")
	}
	return b.startWalk(ctx, c, spaced)
}

func (b *Bot) handleThemed(ctx context.Context, c *chat, args string) error {
	names, limit := parseThemedArgs(args)
	themed, err := c.study.ThemedDeck(names, limit)
	switch {
	case errors.Is(err, deck.ErrNoThemedCards):
		return b.sendText(ctx, c.id, "None of those categories has any cards. Use /categories to see the names.")
	case errors.Is(err, deck.ErrEmptySelection):
		return b.sendText(ctx, c.id, "Usage: /themed <category1,category2> [limit]")
	case err != nil:
		return err
	}
	return b.startWalk(ctx, c, themed)
}

func (b *Bot) handleQuiz(ctx context.Context, c *chat, args string) error {
	n, ok := parseCount(args)
	if !ok {
		return b.sendText(ctx, c.id, fmt.Sprintf("Usage: /quiz [%d-%d]", deck.MinQuestions, deck.MaxQuestions))
	}
	return b.startQuiz(ctx, c, c.study.QuizDeck(n))
}

func (b *Bot) handleWrite(ctx context.Context, c *chat, args string) error {
	n, ok := parseCount(args)
	if !ok {
		return b.sendText(ctx, c.id, fmt.Sprintf("Usage: /write [%d-%d]", deck.MinQuestions, deck.MaxQuestions))
	}
	return b.startWriting(ctx, c, c.study.WritingDeck(n))
}

func (b *Bot) handleStop(ctx context.Context, c *chat, _ string) error {
	b.stopSession(c)
	_, err := b.sendHTML(ctx, c.id, "Session stopped.", MainMenuButtons())
	return err
}

func (b *Bot) handleStats(ctx context.Context, c *chat, _ string) error {
	_, err := b.sendHTML(ctx, c.id, formatOverview(c.study.Overview()), nil)
	return err
}

func (b *Bot) handleNote(ctx context.Context, c *chat, args string) error {
	added, err := c.study.AddNote(ctx, args)
	if err != nil {
		return err
	}
	if !added {
		return b.sendText(ctx, c.id, "Usage: /note <text>")
	}
	return b.sendText(ctx, c.id, "📝 Note saved.")
}

func (b *Bot) handleReset(ctx context.Context, c *chat, _ string) error {
	if err := c.study.ResetSession(ctx); err != nil {
		return err
	}
	return b.sendText(ctx, c.id, "🔄 A new session has started. Card statistics are kept.")
}

func (b *Bot) handleImport(ctx context.Context, c *chat, _ string) error {
	c.mode = modeAwaitingImport
	return b.sendText(ctx, c.id, "Send me a .csv, .json or .xlsx file.\n\n"+
		"Columns: germanWord, englishTranslation, category, germanSentence, englishSentenceTranslation\n\n"+
		"Example CSV line:\n"+
		"der Apfel,the apple,Food,Ich esse einen Apfel.,I am eating an apple.")
}

func (b *Bot) handleDocument(ctx context.Context, c *chat, doc *tgbotapi.Document) error {
	format, err := vocabulary.ParseFormat(doc.FileName)
	if err != nil {
		return b.sendText(ctx, c.id, "Please send a .csv, .json or .xlsx file.")
	}
	if doc.FileSize > b.config.MaxImportSize {
		return b.sendText(ctx, c.id, "That file is too large.")
	}

	url, err := b.client.GetFileDirectURL(doc.FileID)
	if err != nil {
		return fmt.Errorf("failed to get file url: %w", err)
	}

	id, name := c.id, doc.FileName
	go func() {
		data, err := b.download(ctx, url)
		b.post(event{kind: eventImport, chatID: id, fileName: name, data: data, err: err})
	}()
	return b.sendText(ctx, c.id, fmt.Sprintf("📥 Importing %s file...", strings.ToUpper(string(format))))
}

func (b *Bot) handleImported(ctx context.Context, ev event) error {
	c := b.chatFor(ctx, ev.chatID)
	if c.mode == modeAwaitingImport {
		c.mode = modeIdle
	}
	if ev.err != nil {
		b.log.Warn("failed to download import", "chat_id", ev.chatID, "error", ev.err)
		return b.sendText(ctx, c.id, "❌ Could not download the file. Please try again.")
	}
	if len(ev.data) > b.config.MaxImportSize {
		return b.sendText(ctx, c.id, "That file is too large.")
	}

	format, err := vocabulary.ParseFormat(ev.fileName)
	if err != nil {
		return b.sendText(ctx, c.id, "Please send a .csv, .json or .xlsx file.")
	}
	result, err := c.study.Import(ctx, format, ev.data)
	if errors.Is(err, vocabulary.ErrImportParse) {
		return b.sendText(ctx, c.id, fmt.Sprintf("❌ Import failed: %v\n\nNothing was changed.", err))
	}
	if err != nil {
		return err
	}
	return b.sendText(ctx, c.id, fmt.Sprintf("✅ Imported %d words. Use /categories to study them.", result.Imported))
}

func (b *Bot) handleExport(ctx context.Context, c *chat, args string) error {
	if args == "" {
		args = string(vocabulary.FormatCSV)
	}
	format, err := vocabulary.ParseFormat(args)
	if err != nil {
		return b.sendText(ctx, c.id, "Usage: /export [csv|json|xlsx]")
	}

	data, err := c.study.Export(format)
	if err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(c.id, tgbotapi.FileBytes{
		Name:  "german-flashcards." + string(format),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("📤 %d words", len(c.study.CombinedEntries()))
	_, err = b.send(ctx, doc)
	return err
}

func (b *Bot) handleClear(ctx context.Context, c *chat, _ string) error {
	n := len(c.study.CustomEntries())
	if n == 0 {
		return b.sendText(ctx, c.id, "You have no imported words.")
	}
	text := fmt.Sprintf("Remove all %d imported words? Your progress is kept.", n)
	_, err := b.sendHTML(ctx, c.id, text, [][]MenuButton{{
		{Text: "🗑 Yes, remove", CallbackData: "clear:yes"},
		{Text: "Cancel", CallbackData: "clear:no"},
	}})
	return err
}

func (b *Bot) confirmClear(ctx context.Context, c *chat, confirmed bool) error {
	if !confirmed {
		return b.sendText(ctx, c.id, "Nothing was removed.")
	}
	if err := c.study.ClearCustom(ctx); err != nil {
		return err
	}
	return b.sendText(ctx, c.id, "🗑 Imported words removed.")
}

func (b *Bot) handleEdit(ctx context.Context, c *chat, args string) error {
	original, entry, ok := parseEditArgs(args)
	if !ok {
		return b.sendText(ctx, c.id, editUsage)
	}
	if err := c.study.EditEntry(ctx, original, entry); err != nil {
		return b.sendText(ctx, c.id, fmt.Sprintf("❌ Could not edit the word: %v", err))
	}
	return b.sendText(ctx, c.id, fmt.Sprintf("✏️ Saved %s.", entry.GermanWord))
}

const editUsage = "Usage: /edit <word>|<category>|<translation>[|sentence|sentence translation]\n" +
	"To rename or move a word: /edit <old word>|<old category> => <word>|<category>|<translation>[|...]"

func (b *Bot) handleGenerate(ctx context.Context, c *chat, _ string) error {
	if b.generator == nil {
		return b.sendText(ctx, c.id, "AI generation is not configured.")
	}
	if !b.cooldown.Allow(strconv.FormatInt(c.id, 10)) {
		return b.sendText(ctx, c.id, "Please wait a little before generating again.")
	}

	id := c.id
	go func() {
		categories, err := b.generator.Generate(ctx)
		b.post(event{kind: eventGenerated, chatID: id, categories: categories, err: err})
	}()
	return b.sendText(ctx, c.id, "✨ Generating example sentences, this can take a minute...")
}

func (b *Bot) handleGenerated(ctx context.Context, ev event) error {
	c := b.chatFor(ctx, ev.chatID)
	if ev.err != nil {
		b.log.Warn("generation failed", "chat_id", ev.chatID, "error", ev.err)
		if errors.Is(ev.err, ai.ErrGeneration) {
			return b.sendText(ctx, c.id, "❌ Generation failed. Please try again later.")
		}
		return ev.err
	}

	result, err := c.study.ImportGenerated(ctx, ai.MergeCategories(ev.categories))
	if errors.Is(err, vocabulary.ErrImportParse) {
		return b.sendText(ctx, c.id, "❌ The generated content had no usable flashcards.")
	}
	if err != nil {
		return err
	}
	text := fmt.Sprintf("✅ Added %d generated flashcards.", result.Imported)
	if result.Skipped > 0 {
		text += fmt.Sprintf(" %d incomplete ones were skipped.", result.Skipped)
	}
	return b.sendText(ctx, c.id, text)
}

// parseCount reads an optional question count and clamps it
func parseCount(args string) (int, bool) {
	if args == "" {
		return deck.DefaultQuestions, true
	}
	n, err := strconv.Atoi(args)
	if err != nil {
		return 0, false
	}
	return deck.ClampQuestions(n), true
}

// parseCategoryArgs reads filter tokens: "type:<type>", "fav" and
// "len:<min>-<max>" (max may be empty for no limit); other words are the search.
// Without a len token the default word length range applies.
func parseCategoryArgs(args string) (deck.Filter, bool) {
	filter := deck.DefaultFilter()
	var search []string
	for _, token := range strings.Fields(args) {
		lower := strings.ToLower(token)
		switch {
		case lower == "fav" || lower == "favorites":
			filter.FavoritesOnly = true
		case strings.HasPrefix(lower, "type:"):
			filter.Type = strings.TrimPrefix(lower, "type:")
		case strings.HasPrefix(lower, "len:"):
			minText, maxText, _ := strings.Cut(strings.TrimPrefix(lower, "len:"), "-")
			lo, err := strconv.Atoi(minText)
			if err != nil || lo < 0 {
				return deck.Filter{}, false
			}
			hi := 0
			if maxText != "" {
				if hi, err = strconv.Atoi(maxText); err != nil || hi < lo {
					return deck.Filter{}, false
				}
			}
			filter.MinLength, filter.MaxLength = lo, hi
		default:
			search = append(search, token)
		}
	}
	filter.Search = strings.Join(search, " ")
	return filter, true
}

// parseThemedArgs splits "food, travel 20" into names and a limit
func parseThemedArgs(args string) ([]string, int) {
	limit := deck.DefaultThemeSize
	if i := strings.LastIndexAny(args, " \t"); i >= 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(args[i+1:])); err == nil {
			limit = n
			args = args[:i]
		}
	}

	var names []string
	for _, name := range strings.Split(args, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, limit
}

// parseEditArgs reads "word|category|translation[|sentence|sentence translation]",
// optionally preceded by "old word|old category =>" to rename or move an entry
func parseEditArgs(args string) (models.Identity, models.VocabularyEntry, bool) {
	var original models.Identity
	if from, to, found := strings.Cut(args, "=>"); found {
		parts := strings.Split(from, "|")
		if len(parts) != 2 {
			return models.Identity{}, models.VocabularyEntry{}, false
		}
		word, category := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if word == "" || category == "" {
			return models.Identity{}, models.VocabularyEntry{}, false
		}
		original = models.VocabularyEntry{GermanWord: word, Category: category}.Identity()
		args = to
	}

	parts := strings.Split(args, "|")
	if len(parts) < 3 || len(parts) > 5 {
		return models.Identity{}, models.VocabularyEntry{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	parts = append(parts, "", "")

	entry := models.VocabularyEntry{
		GermanWord:                 parts[0],
		Category:                   parts[1],
		EnglishTranslation:         parts[2],
		GermanSentence:             parts[3],
		EnglishSentenceTranslation: parts[4],
	}
	if entry.GermanWord == "" || entry.Category == "" || entry.EnglishTranslation == "" {
		return models.Identity{}, models.VocabularyEntry{}, false
	}
	if original == (models.Identity{}) {
		original = entry.Identity()
	}
	return original, entry, true
}

func formatOverview(o study.Overview) string {
	var s strings.Builder
	fmt.Fprintf(&s, "📊 <b>Progress of %s</b>\n\n", html.EscapeString(o.DisplayName))
	fmt.Fprintf(&s, "Cards: %d · studied %d · need practice %d\n", o.TotalCards, o.StudiedCards, o.NeedPractice)
	fmt.Fprintf(&s, "Reviews: %d · accuracy %d%%\n", o.TotalReviews, o.Accuracy)
	fmt.Fprintf(&s, "Favorites: %d · imported words: %d", o.Favorites, o.CustomEntries)
	if !o.LastImport.IsZero() {
		fmt.Fprintf(&s, " (last change %s)", o.LastImport.UTC().Format("2006-01-02"))
	}

	fmt.Fprintf(&s, "\n\n<b>Session</b> since %s <code>%s</code>\n",
		o.Session.StartedAtTime().UTC().Format("2006-01-02 15:04"), html.EscapeString(o.Session.ID))
	fmt.Fprintf(&s, "Seen %d · ✅ %d · ❌ %d · %d%%\n", o.Session.Seen, o.Session.Correct, o.Session.Incorrect, o.SessionAccuracy)
	for i, note := range o.Session.Notes {
		if i == 3 {
			break
		}
		fmt.Fprintf(&s, "📝 %s\n", html.EscapeString(note))
	}

	s.WriteString("\n<b>Last 7 days</b>\n")
	for _, p := range o.History {
		day, err := time.Parse(progress.DayLayout, p.Day)
		label := p.Day
		if err == nil {
			label = day.Format("Mon 02.01")
		}
		bar := "·"
		if p.Seen > 0 {
			bar = strings.Repeat("▇", min(p.Seen, 20))
		}
		fmt.Fprintf(&s, "<code>%s</code> %s %d/%d\n", label, bar, p.Correct, p.Seen)
	}
	return s.String()
}
