package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/miqdad-dev/portfolio/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// Client writes short portfolio descriptions for repositories that have none.
type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

const systemPrompt = `You write project blurbs for a developer portfolio. Given a GitHub repository's name, primary language, topics and detected technologies, write one or two plain sentences describing what the project likely does.

Return ONLY the description text. No markdown, no quotes, no preamble.`

// maxDescriptionLen keeps generated text card-sized.
const maxDescriptionLen = 300

func (c *Client) Describe(ctx context.Context, repo models.Repository, tech []string) (string, error) {
	var parts []string
	parts = append(parts, fmt.Sprintf("Repository: %s", repo.Name))
	if repo.Language != nil && *repo.Language != "" {
		parts = append(parts, fmt.Sprintf("Language: %s", *repo.Language))
	}
	if len(repo.Topics) > 0 {
		parts = append(parts, fmt.Sprintf("Topics: %s", strings.Join(repo.Topics, ", ")))
	}
	if len(tech) > 0 {
		parts = append(parts, fmt.Sprintf("Technologies: %s", strings.Join(tech, ", ")))
	}
	userMsg := strings.Join(parts, "\n")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("LLM call for %s: %w", repo.Name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned for %s", repo.Name)
	}

	text := clean(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty description returned for %s", repo.Name)
	}
	return text, nil
}

// clean strips code fences and wrapping quotes that some models add, and caps
// the length at a word boundary.
func clean(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	s = strings.Trim(s, `"`)
	s = strings.Join(strings.Fields(s), " ")

	if len(s) > maxDescriptionLen {
		cut := s[:maxDescriptionLen]
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
		s = strings.TrimRight(cut, ",;:") + "…"
	}
	return s
}
