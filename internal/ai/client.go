package ai

import (
	"context"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrUnavailable = errors.New("ai service unavailable")

const systemPrompt = "You are the municipal civic services assistant. " +
	"Help citizens with complaints, service requests and local information. Answer professionally."

// Client talks to an OpenAI-compatible chat-completion endpoint.
type Client struct {
	http  *resty.Client
	model string
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(apiKey).
			SetTimeout(30 * time.Second),
		model: model,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

func (c *Client) Ask(ctx context.Context, userMessage string) (string, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []message{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userMessage},
			},
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", ErrUnavailable
	}
	if resp.IsError() || len(out.Choices) == 0 {
		return "", ErrUnavailable
	}
	return out.Choices[0].Message.Content, nil
}
