package llmHandlers

import (
	"context"
	"strings"
	"testing"
)

func TestNewRejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"unknown provider", Config{Provider: "bard"}, "unknown provider"},
		{"gemini without key", Config{Provider: ProviderGemini, Model: "gemini-2.0-flash-exp"}, "GEMINI_API_KEY"},
		{"groq without model", Config{Provider: ProviderGroq, APIKey: "k"}, "model must be set"},
		{"vertex without credentials", Config{Provider: ProviderVertexAnthropic}, "GCP_SERVICE_ACCOUNT_CREDENTIALS"},
		{"vertex bad base64", Config{Provider: ProviderVertexAnthropic, Vertex: VertexConfig{
			Credentials: "%%%", ProjectID: "p", Location: "us-east5", Model: "m",
		}}, "decode sa json"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(context.Background(), tc.cfg)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("New() error = %v, want %q", err, tc.wantErr)
			}
		})
	}
}

func TestNewOpenAICompatible(t *testing.T) {
	client, err := New(context.Background(), Config{
		Provider: ProviderOpenAI,
		Model:    "gpt-4.1",
		APIKey:   "test-key",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := client.(*LangChainClient); !ok {
		t.Fatalf("New() = %T, want *LangChainClient", client)
	}
}
