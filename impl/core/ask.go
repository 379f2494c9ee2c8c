package core

import (
	"CoverBot/bot/journey"
	"CoverBot/entity"
	"CoverBot/internal/lib/sl"
	"context"
	"log/slog"
)

// Ask answers a free-text help question in the context of the journey's current module
// and opens the AI chat panel. An answer that needs a human also opens the expert panel.
func (c *Core) Ask(ctx context.Context, product, id, question string) (entity.AiAnswer, error) {
	if c.engine == nil || c.ass == nil {
		return entity.AiAnswer{}, ErrNotConfigured
	}
	state, err := c.engine.Get(ctx, product, id)
	if err != nil {
		return entity.AiAnswer{}, err
	}

	answer, err := c.ass.Ask(ctx, state.ID, string(state.CurrentModule), question)
	if err != nil {
		c.log.Error("assistant",
			slog.String("journey_id", id),
			slog.String("module", string(state.CurrentModule)),
			sl.Err(err),
		)
		return answer, err
	}

	patch := journey.Patch{journey.KeyShowAIChat: true}
	if answer.Escalate {
		patch[journey.KeyShowExpertPanel] = true
	}
	if _, err = c.engine.Update(ctx, product, id, patch); err != nil {
		return answer, err
	}
	return answer, nil
}
