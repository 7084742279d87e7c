package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/flashdeck/internal/vocabulary"
	"github.com/example/flashdeck/pkg/models"
	"github.com/sashabaranov/go-openai"
)

var (
	// ErrGeneration marks every failure to obtain generated content
	ErrGeneration = errors.New("could not generate flashcard data")
	// ErrNotConfigured is returned when no API key is available
	ErrNotConfigured = fmt.Errorf("%w: API key is not set", ErrGeneration)
)

// Config configures the generator
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
}

// DefaultConfig returns the default generator configuration
func DefaultConfig() Config {
	return Config{
		Model:       openai.GPT4oMini,
		Timeout:     90 * time.Second,
		Temperature: 0.3,
	}
}

// Generator asks a chat model to write example sentences for the word list
// and returns them grouped into categories
type Generator struct {
	client *openai.Client
	config Config
}

// New creates a generator; it fails with ErrNotConfigured without an API key
func New(config Config) (*Generator, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if config.Model == "" {
		config.Model = DefaultConfig().Model
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Generator{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

const systemPrompt = `You are an expert German language tutor preparing content for a vocabulary flashcard application. You answer with JSON only.`

func userPrompt(wordList string) string {
	return fmt.Sprintf(`The list below holds one vocabulary item per line in "germanWord;englishTranslation;category" format.
For every item write a short, simple German example sentence using the word ("germanSentence") and its English translation ("englishSentenceTranslation").
Group the flashcards by the category given in the list, one category object per category.

Answer with a JSON object of this shape:
{"categories":[{"name":"<category>","flashcards":[{"germanWord":"","englishTranslation":"","germanSentence":"","englishSentenceTranslation":""}]}]}

Word list:
%s`, wordList)
}

// Generate requests content for the built-in word list
func (g *Generator) Generate(ctx context.Context) ([]models.Category, error) {
	return g.GenerateFor(ctx, vocabulary.BaseWordList())
}

// GenerateFor requests content for an arbitrary "word;translation;category" list
func (g *Generator) GenerateFor(ctx context.Context, wordList string) ([]models.Category, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: g.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(strings.TrimSpace(wordList))},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: g.config.Temperature,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty chat response", ErrGeneration)
	}

	return ParseResponse(resp.Choices[0].Message.Content)
}

type response struct {
	Categories []models.Category `json:"categories"`
}

// ParseResponse decodes the model output and merges categories sharing a name
func ParseResponse(content string) ([]models.Category, error) {
	content = stripFence(content)

	var data response
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrGeneration, err)
	}
	if len(data.Categories) == 0 {
		return nil, fmt.Errorf("%w: response has no categories", ErrGeneration)
	}

	return MergeCategories(data.Categories), nil
}

// MergeCategories merges categories with the same name, in order of first
// appearance. Within a category flashcards are unique by German word; a
// later card replaces an earlier one in place.
func MergeCategories(categories []models.Category) []models.Category {
	index := make(map[string]int)
	var out []models.Category
	for _, c := range categories {
		i, ok := index[c.Name]
		if !ok {
			i = len(out)
			index[c.Name] = i
			out = append(out, models.Category{Name: c.Name})
		}
		out[i].Flashcards = mergeCards(out[i].Flashcards, c.Flashcards)
	}
	return out
}

func mergeCards(existing, incoming []models.Flashcard) []models.Flashcard {
	index := make(map[string]int, len(existing)+len(incoming))
	out := make([]models.Flashcard, 0, len(existing)+len(incoming))
	for _, card := range append(append([]models.Flashcard{}, existing...), incoming...) {
		if i, ok := index[card.GermanWord]; ok {
			out[i] = card
			continue
		}
		index[card.GermanWord] = len(out)
		out = append(out, card)
	}
	return out
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
