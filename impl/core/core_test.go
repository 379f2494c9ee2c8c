package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"CoverBot/bot/flows"
	"CoverBot/bot/journey"
	"CoverBot/bot/journey/motor"
	"CoverBot/entity"
	"CoverBot/internal/service/documents"
	"CoverBot/internal/service/vehicle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRepo struct{}

func (fakeRepo) CheckApiKey(key string) (string, error) {
	if key == "issued-key" {
		return "operator", nil
	}
	return "", errors.New("mongo: no documents in result")
}

func (fakeRepo) GenerateApiKey(username string) (string, error) {
	return "issued-key", nil
}

type fakeAssistant struct {
	modules   []string
	forgotten []string
	answer    entity.AiAnswer
}

func (f *fakeAssistant) Ask(_ context.Context, _, module, _ string) (entity.AiAnswer, error) {
	f.modules = append(f.modules, module)
	a := f.answer
	a.Module = module
	return a, nil
}

func (f *fakeAssistant) Forget(journeyID string) {
	f.forgotten = append(f.forgotten, journeyID)
}

func newTestCore(t *testing.T) (*Core, *journey.Engine, *fakeAssistant) {
	t.Helper()
	catalog, err := flows.MotorCatalog()
	require.NoError(t, err)

	vehicles := vehicle.New(0, func() float64 { return 0.9 }, discard())
	opts := append([]journey.EngineOption{
		journey.WithPacer(journey.NoPacer{}),
		journey.WithClock(func() time.Time { return now }),
	}, flows.NewLoaders(vehicles, 0, discard()).Options()...)
	engine := journey.NewEngine(journey.NewMemoryStorage(), discard(), opts...)
	engine.RegisterCatalog(catalog)

	ass := &fakeAssistant{answer: entity.AiAnswer{Text: "Sure."}}
	c := New(discard())
	c.SetEngine(engine)
	c.SetRepository(fakeRepo{})
	c.SetAssistant(ass)
	c.SetAuthKey("config-key")
	c.SetFileSigning("secret", time.Minute)
	c.SetClock(func() time.Time { return now })
	return c, engine, ass
}

func TestAuthenticateByToken(t *testing.T) {
	c, _, _ := newTestCore(t)

	user, err := c.AuthenticateByToken("config-key")
	require.NoError(t, err)
	assert.Equal(t, "internal", user.Username)

	user, err = c.AuthenticateByToken("issued-key")
	require.NoError(t, err)
	assert.Equal(t, "operator", user.Username)

	_, err = c.AuthenticateByToken("nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = c.AuthenticateByToken("")
	assert.ErrorIs(t, err, ErrUnauthorized)

	name, err := c.ValidateToken("issued-key")
	require.NoError(t, err)
	assert.Equal(t, "operator", name)
}

func TestJourneyLifecycle(t *testing.T) {
	c, _, ass := newTestCore(t)
	ctx := context.Background()

	state, err := c.StartJourney(ctx, motor.Product, "j-1")
	require.NoError(t, err)
	assert.Equal(t, motor.StepName, state.CurrentStep)
	assert.Equal(t, journey.StatusAwaiting, state.Status)

	state, err = c.RespondText(ctx, motor.Product, "j-1", "Asha")
	require.NoError(t, err)
	assert.Equal(t, motor.StepPhone, state.CurrentStep)

	state, err = c.EditJourney(ctx, motor.Product, "j-1", motor.StepName, []byte(`{"value":"Ravi"}`))
	require.NoError(t, err)
	assert.Equal(t, "Ravi", state.GetString(motor.KeyUserName))
	assert.Equal(t, motor.StepPhone, state.CurrentStep)

	_, err = c.EditJourney(ctx, motor.Product, "j-1", "intro.nope", []byte(`{"value":"x"}`))
	assert.ErrorIs(t, err, journey.ErrUnknownStep)
	_, err = c.EditJourney(ctx, motor.Product, "j-1", motor.StepName, []byte(`{"value":""}`))
	assert.ErrorIs(t, err, journey.ErrMalformedResponse)

	state, err = c.ResetJourney(ctx, motor.Product, "j-1")
	require.NoError(t, err)
	assert.Equal(t, motor.StepName, state.CurrentStep)
	assert.Empty(t, state.GetString(motor.KeyUserName))
	assert.Equal(t, []string{"j-1"}, ass.forgotten)

	require.NoError(t, c.DeleteJourney(ctx, motor.Product, "j-1"))
	_, err = c.GetJourney(ctx, motor.Product, "j-1")
	assert.ErrorIs(t, err, journey.ErrJourneyNotFound)
}

func TestSetPanels(t *testing.T) {
	c, _, _ := newTestCore(t)
	ctx := context.Background()
	_, err := c.StartJourney(ctx, motor.Product, "j-2")
	require.NoError(t, err)

	on := true
	state, err := c.SetPanels(ctx, motor.Product, "j-2", &on, nil)
	require.NoError(t, err)
	assert.True(t, state.ShowExpertPanel)
	assert.False(t, state.ShowAIChat)

	off := false
	state, err = c.SetPanels(ctx, motor.Product, "j-2", &off, &on)
	require.NoError(t, err)
	assert.False(t, state.ShowExpertPanel)
	assert.True(t, state.ShowAIChat)
}

func TestAskOpensPanels(t *testing.T) {
	c, engine, ass := newTestCore(t)
	ctx := context.Background()
	_, err := c.StartJourney(ctx, motor.Product, "j-3")
	require.NoError(t, err)

	answer, err := c.Ask(ctx, motor.Product, "j-3", "why do you need my number?")
	require.NoError(t, err)
	assert.Equal(t, "Sure.", answer.Text)
	assert.Equal(t, []string{string(motor.ModuleIntro)}, ass.modules)

	state, err := engine.Get(ctx, motor.Product, "j-3")
	require.NoError(t, err)
	assert.True(t, state.ShowAIChat)
	assert.False(t, state.ShowExpertPanel)

	ass.answer.Escalate = true
	_, err = c.Ask(ctx, motor.Product, "j-3", "I want to complain")
	require.NoError(t, err)
	state, err = engine.Get(ctx, motor.Product, "j-3")
	require.NoError(t, err)
	assert.True(t, state.ShowExpertPanel)
}

func TestDocumentLinks(t *testing.T) {
	c, engine, _ := newTestCore(t)
	ctx := context.Background()
	_, err := c.StartJourney(ctx, motor.Product, "j-4")
	require.NoError(t, err)

	_, err = c.DocumentURL(ctx, motor.Product, "j-4", "receipt")
	assert.ErrorIs(t, err, documents.ErrNoPolicy)

	_, err = engine.Update(ctx, motor.Product, "j-4", journey.Patch{
		motor.KeyPolicyNumber: "MOT-20260115-A1B2C3",
		motor.KeyPaymentRef:   "pay_1",
	})
	require.NoError(t, err)

	link, err := c.DocumentURL(ctx, motor.Product, "j-4", "receipt")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "/files/motor/j-4/receipt?"))

	u, err := url.Parse(link)
	require.NoError(t, err)
	q := u.Query()

	doc, err := c.Document(ctx, motor.Product, "j-4", "receipt", q.Get("expires"), q.Get("sig"))
	require.NoError(t, err)
	assert.Contains(t, string(doc.Body), "pay_1")

	_, err = c.Document(ctx, motor.Product, "j-4", "certificate", q.Get("expires"), q.Get("sig"))
	assert.ErrorIs(t, err, ErrLinkInvalid)

	c.SetClock(func() time.Time { return now.Add(time.Hour) })
	_, err = c.Document(ctx, motor.Product, "j-4", "receipt", q.Get("expires"), q.Get("sig"))
	assert.ErrorIs(t, err, ErrLinkInvalid)
}

func TestGraph(t *testing.T) {
	c, _, _ := newTestCore(t)

	g, err := c.Graph(motor.Product)
	require.NoError(t, err)
	assert.Equal(t, motor.StepWelcome, g.Initial)
	assert.NotEmpty(t, g.Nodes)
	assert.Equal(t, []string{motor.Product}, c.Products())

	_, err = c.Graph("life")
	assert.ErrorIs(t, err, journey.ErrJourneyNotFound)
}
