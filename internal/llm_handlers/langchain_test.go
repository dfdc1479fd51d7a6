package llmHandlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

func TestToLangChainMessages(t *testing.T) {
	got := toLangChainMessages("sys", []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleModel, Content: "hello"},
	})

	wantTypes := []llms.ChatMessageType{
		llms.ChatMessageTypeSystem,
		llms.ChatMessageTypeHuman,
		llms.ChatMessageTypeAI,
	}
	if len(got) != len(wantTypes) {
		t.Fatalf("len = %d, want %d", len(got), len(wantTypes))
	}
	for i, want := range wantTypes {
		if got[i].Role != want {
			t.Errorf("message %d role = %q, want %q", i, got[i].Role, want)
		}
	}
	if text, ok := got[2].Parts[0].(llms.TextContent); !ok || text.Text != "hello" {
		t.Errorf("model turn part = %#v", got[2].Parts[0])
	}
}

func TestLangChainClientChat(t *testing.T) {
	var roles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, m := range body.Messages {
			roles = append(roles, m.Role)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hello back"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
		}`))
	}))
	defer srv.Close()

	client, err := NewLangChainClient(LangChainConfig{
		Model:   "test-model",
		BaseURL: srv.URL,
		APIKey:  "test-key",
	})
	if err != nil {
		t.Fatalf("NewLangChainClient() error = %v", err)
	}

	got, err := client.Chat(context.Background(), "", []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleModel, Content: "hello"},
		{Role: RoleUser, Content: "again"},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got != "hello back" {
		t.Errorf("Chat() = %q, want %q", got, "hello back")
	}

	want := []string{"user", "assistant", "user"}
	if strings.Join(roles, ",") != strings.Join(want, ",") {
		t.Errorf("roles sent = %v, want %v", roles, want)
	}
}

func TestLangChainClientProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
	}))
	defer srv.Close()

	client, err := NewLangChainClient(LangChainConfig{Model: "m", BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewLangChainClient() error = %v", err)
	}
	if _, err := client.Chat(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}}); err == nil {
		t.Fatal("expected provider error")
	}
}
