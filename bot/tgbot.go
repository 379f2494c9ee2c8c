package bot

import (
	"CoverBot/bot/journey"
	"CoverBot/bot/tgui"
	"CoverBot/internal/lib/sl"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"
)

const (
	journeyPrefix  = "tg-"
	requestTimeout = 30 * time.Second
)

// TelegramAPI defines the Telegram bot methods the front end needs.
type TelegramAPI interface {
	SendMessage(chatId int64, text string, opts *tgbotapi.SendMessageOpts) (*tgbotapi.Message, error)
	SendChatAction(chatId int64, action string, opts *tgbotapi.SendChatActionOpts) (bool, error)
}

// JourneyService is the part of the core the chat front end drives.
type JourneyService interface {
	StartJourney(ctx context.Context, product, id string) (*journey.State, error)
	ResetJourney(ctx context.Context, product, id string) (*journey.State, error)
	GetJourney(ctx context.Context, product, id string) (*journey.State, error)
	RespondRaw(ctx context.Context, product, id string, raw []byte) (*journey.State, error)
	RespondText(ctx context.Context, product, id, text string) (*journey.State, error)
}

// TgBot runs a journey per Telegram chat and alerts the admin chat.
// It implements journey.Presenter for journeys it owns.
type TgBot struct {
	log         *slog.Logger
	bot         *tgbotapi.Bot
	api         TelegramAPI
	journeys    JourneyService
	product     string
	botUsername string
	adminId     int64
}

func NewTgBot(botName, apiKey string, adminId int64, product string, log *slog.Logger) (*TgBot, error) {
	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		adminId:     adminId,
		botUsername: botName,
		product:     product,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.bot = api
	tgBot.api = api

	return tgBot, nil
}

func (t *TgBot) SetJourneyService(journeys JourneyService) {
	t.journeys = journeys
}

// Start begins polling for updates and blocks while the bot is running.
func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		// If an error is returned by a handler, log it and continue going.
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	updater := ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("start", t.handleStart))
	dispatcher.AddHandler(handlers.NewCommand("reset", t.handleReset))
	dispatcher.AddHandler(handlers.NewCallback(t.journeyCallbackFilter, t.handleCallback))
	dispatcher.AddHandler(handlers.NewMessage(message.Contact, t.handleContact))
	dispatcher.AddHandler(handlers.NewMessage(message.Text, t.handleMessage))

	err := updater.StartPolling(t.bot, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.Info("telegram bot started", slog.String("username", t.botUsername))

	// Idle, to keep updates coming in, and avoid bot stopping.
	updater.Idle()

	return nil
}

// SendMessage alerts the admin chat.
func (t *TgBot) SendMessage(msg string) {
	if t.adminId == 0 {
		return
	}
	t.plainResponse(t.adminId, msg)
}

func journeyID(chatId int64) string {
	return journeyPrefix + strconv.FormatInt(chatId, 10)
}

// chatOf maps a journey back to its chat; ok is false for journeys started elsewhere.
func (t *TgBot) chatOf(state *journey.State) (int64, bool) {
	if state.Product != t.product || !strings.HasPrefix(state.ID, journeyPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(state.ID, journeyPrefix), 10, 64)
	return id, err == nil
}

func (t *TgBot) Typing(_ context.Context, state *journey.State) error {
	chatId, ok := t.chatOf(state)
	if !ok {
		return nil
	}
	_, err := t.api.SendChatAction(chatId, "typing", nil)
	return err
}

func (t *TgBot) Say(_ context.Context, state *journey.State, entry journey.Entry) error {
	// the user's own answer is already in the chat
	if entry.Role == journey.RoleUser {
		return nil
	}
	chatId, ok := t.chatOf(state)
	if !ok {
		return nil
	}
	t.plainResponse(chatId, entry.Text)
	return nil
}

// Ask renders selection widgets as inline keyboards and everything else as a text prompt.
func (t *TgBot) Ask(_ context.Context, state *journey.State, prompt journey.Prompt) error {
	chatId, ok := t.chatOf(state)
	if !ok {
		return nil
	}
	text, opts := renderPrompt(prompt)
	_, err := t.api.SendMessage(chatId, text, opts)
	return err
}

func renderPrompt(prompt journey.Prompt) (string, *tgbotapi.SendMessageOpts) {
	sc := prompt.Script
	text := sc.SubText
	if text == "" {
		text = sc.Placeholder
	}
	opts := &tgbotapi.SendMessageOpts{ReplyMarkup: tgui.RemoveKeyboard()}

	switch prompt.Widget {
	case journey.WidgetSelection:
		if text == "" {
			text = "Choose an option:"
		}
		opts.ReplyMarkup = tgui.OptionsKeyboard(prompt.StepID, sc.Options)
	case journey.WidgetAddOnSelection:
		if text == "" {
			text = "Pick add-ons"
		}
		text = journey.FormatNumberedOptions(text, sc.Options)
		text += "\nSeveral numbers may be separated by commas, or send \"skip\"."
	case journey.WidgetPlanSelection:
		if text == "" {
			text = "Pick a plan"
		}
		text = journey.FormatNumberedOptions(text, sc.Options)
	case journey.WidgetDocumentUpload, journey.WidgetPhotoCapture:
		if text == "" {
			text = "Send the file names, separated by commas."
		}
	default:
		if text == "" {
			text = "Type your answer:"
		}
		if sc.InputType == "tel" {
			opts.ReplyMarkup = tgui.ContactRequestKeyboard("Share my number")
		}
	}
	return text, opts
}

// journeyCallbackFilter filters callbacks produced by journey keyboards.
func (t *TgBot) journeyCallbackFilter(cq *tgbotapi.CallbackQuery) bool {
	return strings.HasPrefix(cq.Data, tgui.CallbackPrefix)
}

func (t *TgBot) handleStart(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.journeys == nil {
		t.log.Warn("journey service not initialized")
		return nil
	}
	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	chatId := ctx.EffectiveChat.Id
	_, err := t.journeys.StartJourney(c, t.product, journeyID(chatId))
	if err != nil {
		t.log.Error("failed to start journey", slog.Int64("chat_id", chatId), sl.Err(err))
	}
	return err
}

func (t *TgBot) handleReset(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.journeys == nil {
		return nil
	}
	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	chatId := ctx.EffectiveChat.Id
	_, err := t.journeys.ResetJourney(c, t.product, journeyID(chatId))
	if errors.Is(err, journey.ErrJourneyNotFound) {
		_, err = t.journeys.StartJourney(c, t.product, journeyID(chatId))
	}
	return err
}

func (t *TgBot) handleCallback(b *tgbotapi.Bot, ctx *ext.Context) error {
	if t.journeys == nil {
		return nil
	}
	cq := ctx.CallbackQuery
	_, _ = cq.Answer(b, nil)

	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return t.onCallback(c, ctx.EffectiveChat.Id, cq.Data)
}

func (t *TgBot) onCallback(ctx context.Context, chatId int64, data string) error {
	step, option, ok := tgui.ParseCallbackData(data)
	if !ok {
		return nil
	}
	id := journeyID(chatId)

	state, err := t.journeys.GetJourney(ctx, t.product, id)
	if err != nil {
		return err
	}
	// a button from an earlier message
	if state.Status != journey.StatusAwaiting || state.CurrentStep != step {
		t.plainResponse(chatId, "That question has already been answered.")
		return nil
	}

	raw, _ := json.Marshal(journey.Choice{ID: option})
	_, err = t.journeys.RespondRaw(ctx, t.product, id, raw)
	return t.reportResponseError(chatId, err)
}

func (t *TgBot) handleMessage(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.journeys == nil {
		return nil
	}
	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return t.onText(c, ctx.EffectiveChat.Id, ctx.EffectiveMessage.Text)
}

// handleContact answers the phone prompt with a shared contact card.
func (t *TgBot) handleContact(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.journeys == nil {
		return nil
	}
	contact := ctx.EffectiveMessage.Contact
	if contact == nil || ctx.EffectiveUser == nil || contact.UserId != ctx.EffectiveUser.Id {
		t.plainResponse(ctx.EffectiveChat.Id, "Please share your own number, or type it in.")
		return nil
	}
	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return t.onText(c, ctx.EffectiveChat.Id, contact.PhoneNumber)
}

func (t *TgBot) onText(ctx context.Context, chatId int64, text string) error {
	id := journeyID(chatId)
	_, err := t.journeys.RespondText(ctx, t.product, id, text)
	if errors.Is(err, journey.ErrJourneyNotFound) {
		_, err = t.journeys.StartJourney(ctx, t.product, id)
		return err
	}
	return t.reportResponseError(chatId, err)
}

func (t *TgBot) reportResponseError(chatId int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, journey.ErrMalformedResponse):
		t.plainResponse(chatId, "Sorry, I did not understand that. Please answer the last question.")
		return nil
	case errors.Is(err, journey.ErrNotAwaiting):
		t.plainResponse(chatId, "Nothing to answer right now. Send /reset to start over.")
		return nil
	}
	t.log.Error("journey response failed", slog.Int64("chat_id", chatId), sl.Err(err))
	return err
}

func (t *TgBot) plainResponse(chatId int64, text string) {
	text = strings.ReplaceAll(text, "**", "*")

	sanitized := sanitize(text)

	if sanitized != "" {
		_, err := t.api.SendMessage(chatId, sanitized, &tgbotapi.SendMessageOpts{
			ParseMode: "MarkdownV2",
		})
		if err != nil {
			t.log.With(
				slog.Int64("id", chatId),
			).Warn("sending message", sl.Err(err))
			_, err = t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
			if err != nil {
				t.log.With(
					slog.Int64("id", chatId),
				).Error("sending safe message", sl.Err(err))
			}
		}
	} else {
		t.log.With(
			slog.Int64("id", chatId),
		).Debug("empty message")
	}
}

// markdownReserved lists the MarkdownV2 characters escaped in bot messages.
// Asterisks stay unescaped so bold text survives.
const markdownReserved = "\\`_{}#+-.!|()[]>=~"

func sanitize(input string) string {
	var sb strings.Builder
	for _, char := range input {
		if strings.ContainsRune(markdownReserved, char) {
			sb.WriteRune('\\')
		}
		sb.WriteRune(char)
	}

	return sb.String()
}
