package journeys

import (
	"CoverBot/bot/journey"
	"CoverBot/entity"
	"context"
)

type Core interface {
	StartJourney(ctx context.Context, product, id string) (*journey.State, error)
	GetJourney(ctx context.Context, product, id string) (*journey.State, error)
	DeleteJourney(ctx context.Context, product, id string) error
	ResetJourney(ctx context.Context, product, id string) (*journey.State, error)
	ResumeJourney(ctx context.Context, product, id string) (*journey.State, error)
	RespondRaw(ctx context.Context, product, id string, raw []byte) (*journey.State, error)
	RespondText(ctx context.Context, product, id, text string) (*journey.State, error)
	EditJourney(ctx context.Context, product, id string, stepID journey.StepID, raw []byte) (*journey.State, error)
	SetPanels(ctx context.Context, product, id string, expert, aiChat *bool) (*journey.State, error)
	Ask(ctx context.Context, product, id, question string) (entity.AiAnswer, error)
	DocumentURL(ctx context.Context, product, id, docID string) (string, error)
	Snapshot(state *journey.State) journey.Snapshot
	Graph(product string) (journey.Graph, error)
	Products() []string
}
