package core

import (
	"CoverBot/bot/journey"
	"CoverBot/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrNotConfigured = errors.New("service not configured")

func (c *Core) StartJourney(ctx context.Context, product, id string) (*journey.State, error) {
	if c.engine == nil {
		return nil, ErrNotConfigured
	}
	state, err := c.engine.Start(ctx, product, id)
	if err != nil {
		c.log.Error("start journey",
			slog.String("product", product),
			slog.String("journey_id", id),
			sl.Err(err),
		)
	}
	return state, err
}

func (c *Core) ResetJourney(ctx context.Context, product, id string) (*journey.State, error) {
	if c.engine == nil {
		return nil, ErrNotConfigured
	}
	if c.ass != nil {
		c.ass.Forget(id)
	}
	return c.engine.Reset(ctx, product, id)
}

// ResumeJourney continues a journey whose advance loop was interrupted.
func (c *Core) ResumeJourney(ctx context.Context, product, id string) (*journey.State, error) {
	if c.engine == nil {
		return nil, ErrNotConfigured
	}
	return c.engine.Resume(ctx, product, id)
}

func (c *Core) GetJourney(ctx context.Context, product, id string) (*journey.State, error) {
	if c.engine == nil {
		return nil, ErrNotConfigured
	}
	return c.engine.Get(ctx, product, id)
}

func (c *Core) DeleteJourney(ctx context.Context, product, id string) error {
	if c.engine == nil {
		return ErrNotConfigured
	}
	if c.ass != nil {
		c.ass.Forget(id)
	}
	return c.engine.Delete(ctx, product, id)
}

func (c *Core) RespondRaw(ctx context.Context, product, id string, raw []byte) (*journey.State, error) {
	if c.engine == nil {
		return nil, ErrNotConfigured
	}
	return c.engine.RespondRaw(ctx, product, id, raw)
}

func (c *Core) RespondText(ctx context.Context, product, id, text string) (*journey.State, error) {
	if c.engine == nil {
		return nil, ErrNotConfigured
	}
	return c.engine.RespondText(ctx, product, id, text)
}

// EditJourney re-answers an earlier step with a payload for that step's widget.
func (c *Core) EditJourney(ctx context.Context, product, id string, stepID journey.StepID, raw []byte) (*journey.State, error) {
	if c.engine == nil {
		return nil, ErrNotConfigured
	}
	catalog, ok := c.engine.Catalog(product)
	if !ok {
		return nil, fmt.Errorf("product %q: %w", product, journey.ErrJourneyNotFound)
	}
	st, ok := catalog.Lookup(stepID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", journey.ErrUnknownStep, stepID)
	}
	r, err := journey.DecodeResponse(st.Widget, raw)
	if err != nil {
		return nil, err
	}
	return c.engine.Edit(ctx, product, id, stepID, r)
}

// SetPanels toggles the expert and AI chat panels; nil leaves a panel unchanged.
func (c *Core) SetPanels(ctx context.Context, product, id string, expert, aiChat *bool) (*journey.State, error) {
	if c.engine == nil {
		return nil, ErrNotConfigured
	}
	patch := journey.Patch{}
	if expert != nil {
		patch[journey.KeyShowExpertPanel] = *expert
	}
	if aiChat != nil {
		patch[journey.KeyShowAIChat] = *aiChat
	}
	return c.engine.Update(ctx, product, id, patch)
}

func (c *Core) Snapshot(state *journey.State) journey.Snapshot {
	return c.engine.Snapshot(state)
}

func (c *Core) Graph(product string) (journey.Graph, error) {
	if c.engine == nil {
		return journey.Graph{}, ErrNotConfigured
	}
	catalog, ok := c.engine.Catalog(product)
	if !ok {
		return journey.Graph{}, fmt.Errorf("product %q: %w", product, journey.ErrJourneyNotFound)
	}
	return catalog.Graph(), nil
}

func (c *Core) Products() []string {
	if c.engine == nil {
		return nil
	}
	return c.engine.Products()
}
