package gpt

import (
	"CoverBot/entity"
	"CoverBot/internal/config"
	"CoverBot/internal/lib/keylock"
	"CoverBot/internal/lib/sl"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
)

const maxHistory = 12

const systemPrompt = `You are the help assistant of a motor insurance purchase chat.
Answer the customer's question briefly and plainly, in at most three sentences.
Never quote a price and never promise claim approval.
If the question needs a licensed advisor (disputes, medical injuries, legal matters, complaints), set escalate to true.
Reply with a JSON object: {"answer": string, "escalate": boolean}.`

// moduleHints narrows the assistant to what the customer is looking at.
var moduleHints = map[string]string{
	"intro":     "The customer is choosing what to insure.",
	"vehicle":   "The customer is identifying the vehicle: registration lookup, brand, model, fuel, CNG kit.",
	"policy":    "The customer is describing the previous policy: expiry, claims made, no claim bonus.",
	"quote":     "The customer is comparing third party and comprehensive plans, IDV and garage tiers.",
	"addons":    "The customer is choosing add-on covers such as zero depreciation or roadside assistance.",
	"owner":     "The customer is entering owner details, e-mail and nominee.",
	"payment":   "The customer is paying for the policy.",
	"dashboard": "The customer owns a policy and is in the servicing menu.",
	"claims":    "The customer is reporting a claim: incident type, FIR, photos and documents.",
	"edits":     "The customer is requesting a change to the policy.",
}

var citation = regexp.MustCompile(`【\d+:\d+†[^】]+】`)

// Helper answers free-text questions with OpenAI chat completions, keeping a
// short history per journey.
type Helper struct {
	client  *openai.Client
	model   string
	locker  *keylock.Locks
	mu      sync.Mutex
	history map[string][]openai.ChatCompletionMessage
	log     *slog.Logger
}

type helperResponse struct {
	Answer   string `json:"answer"`
	Escalate bool   `json:"escalate"`
}

func NewHelper(conf *config.Config, logger *slog.Logger) *Helper {
	clientConfig := openai.DefaultConfig(conf.OpenAI.ApiKey)
	if conf.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = conf.OpenAI.BaseURL
	}
	return &Helper{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   conf.OpenAI.Model,
		locker:  keylock.New(),
		history: make(map[string][]openai.ChatCompletionMessage),
		log:     logger.With(sl.Module("gpt.helper")),
	}
}

// Ask answers a question asked while the journey sits in the given module.
func (h *Helper) Ask(ctx context.Context, journeyID, module, question string) (entity.AiAnswer, error) {
	answer := entity.AiAnswer{Module: module}
	question = strings.TrimSpace(question)
	if question == "" {
		return answer, fmt.Errorf("empty question")
	}

	h.locker.Lock(journeyID)
	defer h.locker.Unlock(journeyID)

	messages := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: systemPrompt}}
	if hint, ok := moduleHints[module]; ok {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: hint})
	}
	messages = append(messages, h.thread(journeyID)...)
	userMsg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: question}
	messages = append(messages, userMsg)

	resp, err := h.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          h.model,
		Messages:       messages,
		Temperature:    0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return answer, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return answer, fmt.Errorf("no choices returned")
	}

	content := resp.Choices[0].Message.Content
	var parsed helperResponse
	if err = json.Unmarshal([]byte(content), &parsed); err != nil {
		h.log.With(
			slog.String("journey_id", journeyID),
			slog.Int("text_length", len(content)),
		).Debug("unstructured answer", sl.Err(err))
		parsed.Answer = content
	}

	answer.Text = strings.TrimSpace(citation.ReplaceAllString(parsed.Answer, ""))
	answer.Escalate = parsed.Escalate
	h.remember(journeyID, userMsg, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: answer.Text})

	h.log.With(
		slog.String("journey_id", journeyID),
		slog.String("module", module),
		slog.Bool("escalate", answer.Escalate),
	).Debug("question answered")
	return answer, nil
}

// Forget drops the history of a journey, e.g. after a reset.
func (h *Helper) Forget(journeyID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.history, journeyID)
}

func (h *Helper) thread(journeyID string) []openai.ChatCompletionMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]openai.ChatCompletionMessage(nil), h.history[journeyID]...)
}

func (h *Helper) remember(journeyID string, msgs ...openai.ChatCompletionMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	thread := append(h.history[journeyID], msgs...)
	if len(thread) > maxHistory {
		thread = thread[len(thread)-maxHistory:]
	}
	h.history[journeyID] = thread
}
