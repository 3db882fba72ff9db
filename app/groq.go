// Groq adapter for recipe generation and chef chat. Groq exposes an
// OpenAI-compatible API, so the shared client works with a BaseURL swap.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kingkey0101/mealmuse-api/app/config"
	"github.com/kingkey0101/mealmuse-api/app/models"
)

const aiRequestTimeout = 10 * time.Second

const recipeSystemPrompt = `You are a professional chef and recipe developer. When asked to generate a recipe, respond with ONLY valid JSON (no markdown, no extra text) matching this exact structure:
{
  "title": "Recipe Name",
  "cuisine": ["cuisine1", "cuisine2"],
  "skill": "beginner|intermediate|advanced",
  "dietaryPreferences": ["dietary1"],
  "cookingTime": 30,
  "ingredients": [{"name": "ingredient", "amount": 1, "unit": "cup"}],
  "steps": ["step1", "step2"]
}`

const chefSystemPrompt = `You are MealMuse's AI Chef Chatbot. You are knowledgeable, friendly, and helpful. You provide cooking advice, recipe suggestions, dietary tips, and answer questions about food and cooking. Keep responses concise and helpful.`

// GroqClient calls the Groq chat completions API.
type GroqClient struct {
	client *openai.Client
	model  string
}

func NewGroqClient(cfg config.GroqConfig) *GroqClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	return &GroqClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (g *GroqClient) Model() string { return g.model }

// GenerateRecipe asks the model for a structured recipe and parses the JSON
// object out of its reply.
func (g *GroqClient) GenerateRecipe(ctx context.Context, prompt string) (*models.GeneratedRecipe, error) {
	ctx, cancel := context.WithTimeout(ctx, aiRequestTimeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: recipeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1500,
	})
	if err != nil {
		return nil, fmt.Errorf("groq completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("groq returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	jsonString, err := extractRecipeJSON(content)
	if err != nil {
		return nil, err
	}

	var recipe models.GeneratedRecipe
	if err := json.Unmarshal([]byte(jsonString), &recipe); err != nil {
		return nil, fmt.Errorf("parse recipe JSON: %w", err)
	}
	return &recipe, nil
}

// Chat sends the ordered conversation history and returns the assistant reply.
func (g *GroqClient) Chat(ctx context.Context, history []models.ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, aiRequestTimeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: chefSystemPrompt},
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if strings.EqualFold(msg.Role, "assistant") {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("groq completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var (
	reJSONFence    = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	reFence        = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	reTrailingObj  = regexp.MustCompile(`,\s*}`)
	reTrailingArr  = regexp.MustCompile(`,\s*]`)
	reInnerNewline = regexp.MustCompile(`[\r\n]+`)
)

// extractRecipeJSON pulls one JSON object out of a model reply. The reply is
// expected to be bare JSON but may arrive fenced in a ```json block, a plain
// ``` block, or surrounded by prose; in the prose case the span from the
// first '{' to the last '}' is taken. Trailing commas are stripped.
func extractRecipeJSON(content string) (string, error) {
	jsonString := content

	if m := reJSONFence.FindStringSubmatch(content); m != nil {
		jsonString = m[1]
	} else if m := reFence.FindStringSubmatch(content); m != nil {
		jsonString = m[1]
	} else {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start != -1 && end > start {
			jsonString = content[start : end+1]
		}
	}

	jsonString = reInnerNewline.ReplaceAllString(jsonString, " ")
	jsonString = reTrailingObj.ReplaceAllString(jsonString, "}")
	jsonString = reTrailingArr.ReplaceAllString(jsonString, "]")
	jsonString = strings.TrimSpace(jsonString)

	if !strings.HasPrefix(jsonString, "{") {
		return "", fmt.Errorf("no JSON object found in model response")
	}
	return jsonString, nil
}
