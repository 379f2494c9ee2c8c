package gpt

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"CoverBot/internal/config"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompletions struct {
	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	replies  []string
}

func (f *fakeCompletions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}
	var req openai.ChatCompletionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	reply := f.replies[0]
	f.replies = f.replies[1:]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:     "chatcmpl-1",
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
			FinishReason: openai.FinishReasonStop,
		}},
	})
}

func newTestHelper(t *testing.T, replies ...string) (*Helper, *fakeCompletions) {
	t.Helper()
	fake := &fakeCompletions{replies: replies}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	conf := &config.Config{}
	conf.OpenAI.ApiKey = "test"
	conf.OpenAI.Model = "gpt-4o-mini"
	conf.OpenAI.BaseURL = srv.URL + "/v1"
	return NewHelper(conf, slog.New(slog.NewTextHandler(io.Discard, nil))), fake
}

func TestAskParsesStructuredAnswer(t *testing.T) {
	h, fake := newTestHelper(t,
		`{"answer":"IDV is the insured declared value of your car.【4:0†source】","escalate":false}`,
		`{"answer":"Please talk to an advisor.","escalate":true}`,
	)
	ctx := context.Background()

	ans, err := h.Ask(ctx, "j-1", "quote", "What is IDV?")
	require.NoError(t, err)
	assert.Equal(t, "IDV is the insured declared value of your car.", ans.Text)
	assert.False(t, ans.Escalate)
	assert.Equal(t, "quote", ans.Module)

	ans, err = h.Ask(ctx, "j-1", "claims", "My passenger was hurt")
	require.NoError(t, err)
	assert.True(t, ans.Escalate)

	require.Len(t, fake.requests, 2)
	first := fake.requests[0]
	assert.Equal(t, "gpt-4o-mini", first.Model)
	assert.Equal(t, moduleHints["quote"], first.Messages[1].Content)

	// the second request carries the first exchange
	second := fake.requests[1]
	var contents []string
	for _, m := range second.Messages {
		contents = append(contents, m.Content)
	}
	assert.Contains(t, contents, "What is IDV?")
	assert.Contains(t, contents, "IDV is the insured declared value of your car.")
}

func TestAskFallsBackToPlainText(t *testing.T) {
	h, _ := newTestHelper(t, "Just plain text")

	ans, err := h.Ask(context.Background(), "j-2", "unknown", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Just plain text", ans.Text)
	assert.False(t, ans.Escalate)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	h, fake := newTestHelper(t)

	_, err := h.Ask(context.Background(), "j-3", "quote", "   ")
	require.Error(t, err)
	assert.Empty(t, fake.requests)
}

func TestHistoryIsCapped(t *testing.T) {
	h, _ := newTestHelper(t)
	for i := 0; i < maxHistory; i++ {
		h.remember("j-4",
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "q"},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "a"},
		)
	}
	assert.Len(t, h.thread("j-4"), maxHistory)

	h.Forget("j-4")
	assert.Empty(t, h.thread("j-4"))
}
