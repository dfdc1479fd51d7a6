package llmHandlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/genproto/googleapis/api/httpbody"
)

const anthropicVertexVersion = "vertex-2023-10-16"

// VertexAnthropicClient calls Claude models published on Vertex AI through
// the rawPredict endpoint.
type VertexAnthropicClient struct {
	prediction *aiplatform.PredictionClient
	endpoint   string

	MaxTokens int
}

type VertexConfig struct {
	Credentials string // base64 encoded service account JSON
	ProjectID   string
	Location    string // e.g. "us-east5"
	Model       string // e.g. "claude-sonnet-4-5@20250929"
}

func NewVertexAnthropicClient(ctx context.Context, cfg VertexConfig) (*VertexAnthropicClient, error) {
	if cfg.Credentials == "" {
		return nil, fmt.Errorf("GCP_SERVICE_ACCOUNT_CREDENTIALS not set")
	}
	if cfg.ProjectID == "" || cfg.Location == "" || cfg.Model == "" {
		return nil, fmt.Errorf("vertex project, location and model must be set")
	}

	saJSON, err := base64.StdEncoding.DecodeString(cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("decode sa json: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, saJSON, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, fmt.Errorf("CredentialsFromJSON: %w", err)
	}

	prediction, err := aiplatform.NewPredictionClient(ctx,
		option.WithCredentials(creds),
		option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", cfg.Location)),
	)
	if err != nil {
		return nil, fmt.Errorf("vertex.NewPredictionClient: %w", err)
	}

	return &VertexAnthropicClient{
		prediction: prediction,
		endpoint: fmt.Sprintf("projects/%s/locations/%s/publishers/anthropic/models/%s",
			cfg.ProjectID, cfg.Location, cfg.Model),
		MaxTokens: 1024,
	}, nil
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	Messages         []claudeMessage `json:"messages"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// buildClaudeRequest maps model turns to "assistant". Claude rejects a
// conversation that opens with an assistant turn, so leading model turns
// are dropped.
func buildClaudeRequest(systemMessage string, messages []Message, maxTokens int) claudeRequest {
	req := claudeRequest{
		AnthropicVersion: anthropicVertexVersion,
		Messages:         []claudeMessage{},
		MaxTokens:        maxTokens,
	}

	systemParts := []string{}
	if systemMessage != "" {
		systemParts = append(systemParts, systemMessage)
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			systemParts = append(systemParts, m.Content)
		case RoleModel:
			if len(req.Messages) == 0 {
				continue
			}
			req.Messages = append(req.Messages, claudeMessage{Role: "assistant", Content: m.Content})
		default:
			req.Messages = append(req.Messages, claudeMessage{Role: "user", Content: m.Content})
		}
	}
	req.System = strings.Join(systemParts, "\n")
	return req
}

func parseClaudeResponse(data []byte) (string, error) {
	var resp claudeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	texts := []string{}
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, "\n\n"), nil
}

func (c *VertexAnthropicClient) Chat(ctx context.Context, systemMessage string, messages []Message) (string, error) {
	payload, err := json.Marshal(buildClaudeRequest(systemMessage, messages, c.MaxTokens))
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}

	resp, err := c.prediction.RawPredict(ctx, &aiplatformpb.RawPredictRequest{
		Endpoint: c.endpoint,
		HttpBody: &httpbody.HttpBody{
			ContentType: "application/json",
			Data:        payload,
		},
	})
	if err != nil {
		return "", fmt.Errorf("vertex rawPredict: %w", err)
	}
	return parseClaudeResponse(resp.GetData())
}

func (c *VertexAnthropicClient) Close() error {
	return c.prediction.Close()
}
