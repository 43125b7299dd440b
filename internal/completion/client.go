package completion

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultMaxContext is the total character budget for code context sent with
// a completion request, split evenly around the cursor.
const DefaultMaxContext = 5000

// maxSuggestions caps how many discrete suggestions a response yields.
const maxSuggestions = 3

// Request is one stateless completion call. Nothing is retained between
// requests.
type Request struct {
	Code     string `json:"code"`
	Cursor   int    `json:"cursor"`
	Language string `json:"language"`
}

// Client calls an OpenAI-compatible text-generation API for cursor
// completions.
type Client struct {
	client     *openai.Client
	model      string
	maxContext int
}

// NewClient creates a completion client for the given provider. A
// non-positive maxContext falls back to DefaultMaxContext.
func NewClient(baseURL, apiKey, model string, maxContext int) *Client {
	if maxContext <= 0 {
		maxContext = DefaultMaxContext
	}
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)
	return &Client{
		client:     &client,
		model:      model,
		maxContext: maxContext,
	}
}

// Complete asks the model for up to three completion suggestions at the
// request's cursor position.
func (c *Client) Complete(ctx context.Context, req Request) ([]string, error) {
	before, after := splitContext(req.Code, req.Cursor, c.maxContext)

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(buildPrompt(before, after, req.Language)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	return ExtractSuggestions(completion.Choices[0].Message.Content), nil
}

// splitContext windows the code around the cursor, spending half the budget
// on each side. Window edges are snapped to rune boundaries so the model
// never receives invalid UTF-8 fragments.
func splitContext(code string, cursor, budget int) (before, after string) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(code) {
		cursor = len(code)
	}
	for cursor > 0 && cursor < len(code) && !utf8.RuneStart(code[cursor]) {
		cursor--
	}
	half := budget / 2

	start := cursor - half
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(code[start]) {
		start--
	}
	end := cursor + half
	if end > len(code) {
		end = len(code)
	}
	for end < len(code) && !utf8.RuneStart(code[end]) {
		end++
	}
	return code[start:cursor], code[cursor:end]
}

func buildPrompt(before, after, language string) string {
	return fmt.Sprintf(`You are an expert %[1]s programmer providing autocompletion suggestions.
Complete the code based on what comes before the cursor.
Only provide code suggestions, no explanations.
Keep suggestions concise and relevant to the current context.
Provide up to 3 different completion options.

Code before cursor:
`+"```%[1]s\n%[2]s\n```"+`

Code after cursor (for context):
`+"```%[1]s\n%[3]s\n```"+`

Completion suggestions:`, language, before, after)
}

var (
	fenceOpenRe = regexp.MustCompile("```[a-zA-Z]*\n?")
	separatorRe = regexp.MustCompile(`\n\d+\.\s|\n-{3,}\n|\n\*\s`)
)

// ExtractSuggestions splits a model response into at most three discrete
// suggestions: code-fence markup is stripped, then the text is split on
// numbered-list markers, horizontal rules, or bullets. When no separators are
// found the whole response is one suggestion.
func ExtractSuggestions(text string) []string {
	cleaned := fenceOpenRe.ReplaceAllString(text, "")

	parts := separatorRe.Split(cleaned, -1)
	var suggestions []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			suggestions = append(suggestions, p)
		}
	}

	if len(suggestions) <= 1 {
		if whole := strings.TrimSpace(cleaned); whole != "" {
			return []string{whole}
		}
		return nil
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
