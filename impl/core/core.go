package core

import (
	"CoverBot/bot/journey"
	"CoverBot/entity"
	"CoverBot/internal/lib/sl"
	"context"
	"log/slog"
	"time"
)

type Repository interface {
	CheckApiKey(key string) (string, error)
	GenerateApiKey(username string) (string, error)
}

// Engine is the journey interpreter the core drives.
type Engine interface {
	Start(ctx context.Context, product, id string) (*journey.State, error)
	Reset(ctx context.Context, product, id string) (*journey.State, error)
	Resume(ctx context.Context, product, id string) (*journey.State, error)
	Get(ctx context.Context, product, id string) (*journey.State, error)
	Delete(ctx context.Context, product, id string) error
	Respond(ctx context.Context, product, id string, r journey.Response) (*journey.State, error)
	RespondRaw(ctx context.Context, product, id string, raw []byte) (*journey.State, error)
	RespondText(ctx context.Context, product, id, text string) (*journey.State, error)
	Edit(ctx context.Context, product, id string, stepID journey.StepID, r journey.Response) (*journey.State, error)
	Update(ctx context.Context, product, id string, patch journey.Patch) (*journey.State, error)
	Snapshot(state *journey.State) journey.Snapshot
	Catalog(product string) (*journey.Catalog, bool)
	Products() []string
}

type Assistant interface {
	Ask(ctx context.Context, journeyID, module, question string) (entity.AiAnswer, error)
	Forget(journeyID string)
}

type Core struct {
	repo       Repository
	engine     Engine
	ass        Assistant
	authKey    string
	fileSecret string
	fileTTL    time.Duration
	clock      func() time.Time
	log        *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		fileTTL: 15 * time.Minute,
		clock:   time.Now,
		log:     log.With(sl.Module("core")),
	}
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}

func (c *Core) SetEngine(engine Engine) {
	c.engine = engine
}

func (c *Core) SetAssistant(ass Assistant) {
	c.ass = ass
}

// SetFileSigning configures the secret and lifetime of document download links.
func (c *Core) SetFileSigning(secret string, ttl time.Duration) {
	c.fileSecret = secret
	if ttl > 0 {
		c.fileTTL = ttl
	}
}

func (c *Core) SetClock(clock func() time.Time) {
	c.clock = clock
}
