package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"doc-assistant-be/pkg/llm"
)

func newTestServer(t *testing.T, capture *ollamaChatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("request path = %q, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "grounded answer"},
			Done:    true,
		})
	}))
}

func TestChatMapsRolesAndOptions(t *testing.T) {
	var got ollamaChatRequest
	srv := newTestServer(t, &got)
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	answer, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "answer from the reference material"},
		{Role: "model", Content: "previous turn"},
		{Role: "user", Content: "what is a closure?"},
	}, llm.WithTemperature(0.4), llm.WithMaxTokens(256))
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}

	if answer != "grounded answer" {
		t.Errorf("answer = %q", answer)
	}
	if got.Model != "llama3" {
		t.Errorf("model = %q, want llama3", got.Model)
	}
	if got.Stream {
		t.Error("stream must be disabled")
	}

	wantRoles := []string{"system", "assistant", "user"}
	for i, want := range wantRoles {
		if got.Messages[i].Role != want {
			t.Errorf("message %d role = %q, want %q", i, got.Messages[i].Role, want)
		}
	}

	if got.Options == nil {
		t.Fatal("options not sent")
	}
	if got.Options.Temperature != 0.4 {
		t.Errorf("temperature = %v, want 0.4", got.Options.Temperature)
	}
	if got.Options.NumPredict != 256 {
		t.Errorf("num_predict = %d, want 256", got.Options.NumPredict)
	}
}

func TestChatDefaultsTemperature(t *testing.T) {
	var got ollamaChatRequest
	srv := newTestServer(t, &got)
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	if _, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}); err != nil {
		t.Fatalf("Chat error: %v", err)
	}

	if got.Options == nil || got.Options.Temperature != defaultTemperature {
		t.Errorf("options = %+v, want default temperature %v", got.Options, defaultTemperature)
	}
	if got.Options.NumPredict != 0 {
		t.Errorf("num_predict = %d, want unset", got.Options.NumPredict)
	}
}

func TestChatSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "missing")
	if _, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}
