package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/resolvelab/coach/provider"
)

const defaultBaseURL = "https://api.openai.com/v1"

// client implements provider.Provider against the OpenAI Assistants API.
type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a new Assistants API client. baseURL may be empty for the
// production endpoint.
func New(apiKey, baseURL string, timeout time.Duration) provider.Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type assistantPayload struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	Model        string `json:"model"`
}

type idResponse struct {
	ID string `json:"id"`
}

func (c *client) CreateAssistant(ctx context.Context, name, instructions, model string) (string, error) {
	var out idResponse
	err := c.do(ctx, http.MethodPost, "/assistants", assistantPayload{Name: name, Instructions: instructions, Model: model}, &out)
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	return out.ID, nil
}

func (c *client) CreateThread(ctx context.Context) (string, error) {
	var out idResponse
	if err := c.do(ctx, http.MethodPost, "/threads", struct{}{}, &out); err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return out.ID, nil
}

type messagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *client) AddMessage(ctx context.Context, threadID, role, content string) error {
	path := fmt.Sprintf("/threads/%s/messages", threadID)
	if err := c.do(ctx, http.MethodPost, path, messagePayload{Role: role, Content: content}, nil); err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	return nil
}

// messageList mirrors the Assistants message list shape: content is a list of
// typed blocks, text blocks carrying the value we care about.
type messageList struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

func (c *client) ListMessages(ctx context.Context, threadID string) ([]provider.ThreadMessage, error) {
	var out messageList
	path := fmt.Sprintf("/threads/%s/messages", threadID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	msgs := make([]provider.ThreadMessage, 0, len(out.Data))
	for _, m := range out.Data {
		var text string
		for _, block := range m.Content {
			if block.Type == "text" {
				text = block.Text.Value
				break
			}
		}
		msgs = append(msgs, provider.ThreadMessage{Role: m.Role, Content: text})
	}
	return msgs, nil
}

type runPayload struct {
	AssistantID  string `json:"assistant_id"`
	Instructions string `json:"instructions,omitempty"`
}

type runResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

func (c *client) CreateRun(ctx context.Context, threadID, assistantID, instructions string) (string, error) {
	var out runResponse
	path := fmt.Sprintf("/threads/%s/runs", threadID)
	if err := c.do(ctx, http.MethodPost, path, runPayload{AssistantID: assistantID, Instructions: instructions}, &out); err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return out.ID, nil
}

func (c *client) GetRun(ctx context.Context, threadID, runID string) (provider.Run, error) {
	var out runResponse
	path := fmt.Sprintf("/threads/%s/runs/%s", threadID, runID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return provider.Run{}, fmt.Errorf("get run: %w", err)
	}
	run := provider.Run{ID: out.ID, Status: provider.RunStatus(out.Status)}
	if out.LastError != nil {
		run.LastError = &provider.RunError{Code: out.LastError.Code, Message: out.LastError.Message}
	}
	return run, nil
}

func (c *client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []provider.ToolOutput) error {
	if outputs == nil {
		outputs = []provider.ToolOutput{}
	}
	body := struct {
		ToolOutputs []provider.ToolOutput `json:"tool_outputs"`
	}{ToolOutputs: outputs}
	path := fmt.Sprintf("/threads/%s/runs/%s/submit_tool_outputs", threadID, runID)
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("submit tool outputs: %w", err)
	}
	return nil
}

// do sends a request to the Assistants API and decodes the response into out.
func (c *client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
