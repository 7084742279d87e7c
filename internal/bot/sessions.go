package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/example/flashdeck/internal/quiz"
	"github.com/example/flashdeck/pkg/models"
)

// stopSession ends any running deck, quiz or writing practice
func (b *Bot) stopSession(c *chat) {
	if c.quizTimer != nil {
		c.quizTimer.Stop()
		c.quizTimer = nil
	}
	// pending timer events no longer match
	c.quizSeq++
	c.quiz = nil
	c.writing = nil
	c.walk = nil
	c.walkMessage = 0
	c.mode = modeIdle
}

// record applies a review outcome. The outcome counts even when saving it
// fails; the controller logs that failure and the session moves on.
func (b *Bot) record(ctx context.Context, c *chat, card models.Flashcard, correct bool) {
	if _, err := c.study.RecordResult(ctx, card, correct); err != nil {
		b.log.Warn("continuing with unsaved review", "chat_id", c.id, "card", card.Key())
	}
}

func (b *Bot) startWalk(ctx context.Context, c *chat, cards models.Category) error {
	b.stopSession(c)
	if len(cards.Flashcards) == 0 {
		return b.sendText(ctx, c.id, "This deck has no cards.")
	}

	c.walk = quiz.NewWalk(cards)
	c.mode = modeWalk
	text, buttons := b.renderWalk(c)
	msg, err := b.sendHTML(ctx, c.id, text, buttons)
	if err != nil {
		return err
	}
	c.walkMessage = msg.MessageID
	return nil
}

func (b *Bot) renderWalk(c *chat) (string, [][]MenuButton) {
	card, _ := c.walk.Current()

	var s strings.Builder
	fmt.Fprintf(&s, "<b>%s</b> · %d/%d\n\n", html.EscapeString(c.walk.Deck().Name), c.walk.Index()+1, c.walk.Len())
	fmt.Fprintf(&s, "🇩🇪 <b>%s</b>\n", html.EscapeString(card.GermanWord))
	if card.Category != "" {
		fmt.Fprintf(&s, "<i>%s</i>\n", html.EscapeString(card.Category))
	}
	if c.walk.Flipped() {
		fmt.Fprintf(&s, "\n🇬🇧 %s\n", html.EscapeString(card.EnglishTranslation))
		if card.GermanSentence != "" {
			fmt.Fprintf(&s, "\n%s\n<i>%s</i>\n", html.EscapeString(card.GermanSentence), html.EscapeString(card.EnglishSentenceTranslation))
		}
		if stats, ok := c.study.Stats(card.Key()); ok {
			fmt.Fprintf(&s, "\nSeen %d · ✅ %d · ❌ %d · last %s", stats.Seen, stats.Correct, stats.Incorrect,
				stats.LastReviewedAt().UTC().Format("02.01.2006"))
		}
	}

	favorite := "☆ Favorite"
	if c.study.IsFavorite(card.Key()) {
		favorite = "★ Favorite"
	}
	buttons := [][]MenuButton{
		{
			{Text: "⬅️", CallbackData: "prev"},
			{Text: "🔄 Flip", CallbackData: "flip"},
			{Text: "➡️", CallbackData: "next"},
		},
		{
			{Text: favorite, CallbackData: "fav"},
		},
	}
	if c.walk.Flipped() {
		buttons = append(buttons, []MenuButton{
			{Text: "✅ Knew it", CallbackData: "knew"},
			{Text: "❌ Missed it", CallbackData: "miss"},
		})
	}
	return s.String(), buttons
}

// walkAction applies a card button; only the latest deck message responds
func (b *Bot) walkAction(ctx context.Context, c *chat, action string, messageID int) (string, error) {
	if c.walk == nil || messageID != c.walkMessage {
		return "This deck is closed.", nil
	}
	card, ok := c.walk.Current()
	if !ok {
		return "This deck has no cards.", nil
	}

	var notice string
	switch action {
	case "flip":
		c.walk.Flip()
	case "prev":
		c.walk.Prev()
	case "next":
		c.walk.Next()
	case "fav":
		on, err := c.study.ToggleFavorite(ctx, card.Key())
		if err != nil {
			return "", err
		}
		notice = "Removed from favorites"
		if on {
			notice = "Added to favorites"
		}
	case "knew", "miss":
		b.record(ctx, c, card, action == "knew")
		notice = "Marked for practice"
		if action == "knew" {
			notice = "Marked as known"
		}
		c.walk.Next()
	}

	text, buttons := b.renderWalk(c)
	return notice, b.editHTML(ctx, c.id, c.walkMessage, text, buttons)
}

func (b *Bot) startQuiz(ctx context.Context, c *chat, cards []models.Flashcard) error {
	b.stopSession(c)
	if len(cards) == 0 {
		return b.sendText(ctx, c.id, "There are no cards for a quiz yet.")
	}
	c.quiz = quiz.New(cards, b.rnd)
	c.mode = modeQuiz
	return b.askQuestion(ctx, c)
}

// askQuestion sends the current question and starts its timer
func (b *Bot) askQuestion(ctx context.Context, c *chat) error {
	question, ok := c.quiz.Current()
	if !ok {
		return nil
	}

	c.quizSeq++
	seq, id := c.quizSeq, c.id
	c.quizTimer = time.AfterFunc(b.config.QuestionTime, func() {
		b.post(event{kind: eventQuizTimeout, chatID: id, seq: seq})
	})

	text := fmt.Sprintf("❓ Question %d/%d · %ds\n\nWhat does <b>%s</b> mean?",
		c.quiz.Index()+1, c.quiz.Len(), int(b.config.QuestionTime.Seconds()), html.EscapeString(question.Card.GermanWord))
	buttons := make([][]MenuButton, 0, len(question.Options))
	for i, option := range question.Options {
		buttons = append(buttons, []MenuButton{{Text: option, CallbackData: fmt.Sprintf("quiz:%d:%d", seq, i)}})
	}
	_, err := b.sendHTML(ctx, c.id, text, buttons)
	return err
}

// answerQuiz handles a "seq:option" quiz button
func (b *Bot) answerQuiz(ctx context.Context, c *chat, arg string) (string, error) {
	seqText, optionText, _ := strings.Cut(arg, ":")
	seq, err1 := strconv.Atoi(seqText)
	option, err2 := strconv.Atoi(optionText)
	if err1 != nil || err2 != nil || c.quiz == nil || seq != c.quizSeq {
		return "This question is closed.", nil
	}

	outcome, err := c.quiz.Answer(option)
	switch {
	case errors.Is(err, quiz.ErrAlreadyAnswered), errors.Is(err, quiz.ErrFinished):
		return "This question is closed.", nil
	case errors.Is(err, quiz.ErrInvalidOption):
		return "Unknown option", nil
	case err != nil:
		return "", err
	}
	if c.quizTimer != nil {
		c.quizTimer.Stop()
	}
	return "", b.finishQuestion(ctx, c, outcome)
}

func (b *Bot) handleQuizTimeout(ctx context.Context, ev event) error {
	c, ok := b.chats[ev.chatID]
	if !ok || c.quiz == nil || ev.seq != c.quizSeq {
		return nil
	}
	outcome, err := c.quiz.Expire()
	if err != nil {
		// answered just before the timer fired
		return nil
	}
	return b.finishQuestion(ctx, c, outcome)
}

// finishQuestion records a scored question and moves the quiz on
func (b *Bot) finishQuestion(ctx context.Context, c *chat, outcome quiz.Outcome) error {
	b.record(ctx, c, outcome.Card, outcome.Correct)

	word, translation := html.EscapeString(outcome.Card.GermanWord), html.EscapeString(outcome.Card.EnglishTranslation)
	var text string
	switch {
	case outcome.TimedOut:
		text = fmt.Sprintf("⏰ Time's up! <b>%s</b> means <i>%s</i>.", word, translation)
	case outcome.Correct:
		text = fmt.Sprintf("✅ Correct! <b>%s</b> means <i>%s</i>.", word, translation)
	default:
		text = fmt.Sprintf("❌ Wrong. <b>%s</b> means <i>%s</i>.", word, translation)
	}
	if _, err := b.sendHTML(ctx, c.id, text, nil); err != nil {
		return err
	}

	if c.quiz.Next() {
		return b.askQuestion(ctx, c)
	}
	summary := fmt.Sprintf("🏁 Quiz finished: %d/%d correct (%d%%).", c.quiz.Score(), c.quiz.Len(), c.quiz.Percent())
	b.stopSession(c)
	_, err := b.sendHTML(ctx, c.id, summary, MainMenuButtons())
	return err
}

func (b *Bot) startWriting(ctx context.Context, c *chat, cards []models.Flashcard) error {
	b.stopSession(c)
	if len(cards) == 0 {
		return b.sendText(ctx, c.id, "There are no cards for writing practice yet.")
	}
	c.writing = quiz.NewWriting(cards)
	c.mode = modeWriting
	return b.askWriting(ctx, c)
}

func (b *Bot) askWriting(ctx context.Context, c *chat) error {
	card, ok := c.writing.Current()
	if !ok {
		return nil
	}
	text := fmt.Sprintf("✍️ Card %d/%d\n\nType the German word for <b>%s</b>",
		c.writing.Index()+1, c.writing.Len(), html.EscapeString(card.EnglishTranslation))
	if card.EnglishSentenceTranslation != "" {
		text += fmt.Sprintf("\n<i>%s</i>", html.EscapeString(card.EnglishSentenceTranslation))
	}
	_, err := b.sendHTML(ctx, c.id, text, nil)
	return err
}

func (b *Bot) answerWriting(ctx context.Context, c *chat, answer string) error {
	result, err := c.writing.Submit(answer)
	switch {
	case errors.Is(err, quiz.ErrBlankAnswer):
		return b.sendText(ctx, c.id, "Type the German word, or /stop to end the practice.")
	case err != nil:
		return err
	}
	b.record(ctx, c, result.Card, result.Correct)

	word := html.EscapeString(result.Card.GermanWord)
	var text string
	switch {
	case result.Correct && result.Grade.Distance == 0:
		text = "✅ Correct!"
	case result.Correct:
		text = fmt.Sprintf("✅ Almost! It is spelled <b>%s</b>.", word)
	default:
		text = fmt.Sprintf("❌ Not quite. The answer is <b>%s</b>.", word)
	}
	if _, err := b.sendHTML(ctx, c.id, text, nil); err != nil {
		return err
	}

	if c.writing.Next() {
		return b.askWriting(ctx, c)
	}
	summary := fmt.Sprintf("🏁 Writing practice finished: %d/%d correct.", c.writing.Score(), c.writing.Len())
	b.stopSession(c)
	_, err = b.sendHTML(ctx, c.id, summary, MainMenuButtons())
	return err
}
