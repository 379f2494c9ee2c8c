package journey

import (
	"context"
	"errors"
)

// NopPresenter discards everything. Useful for headless journeys.
type NopPresenter struct{}

func (NopPresenter) Typing(context.Context, *State) error      { return nil }
func (NopPresenter) Say(context.Context, *State, Entry) error  { return nil }
func (NopPresenter) Ask(context.Context, *State, Prompt) error { return nil }

// Presenters fans every call out to several front ends.
type Presenters []Presenter

func (p Presenters) Typing(ctx context.Context, state *State) error {
	var errs []error
	for _, pr := range p {
		errs = append(errs, pr.Typing(ctx, state))
	}
	return errors.Join(errs...)
}

func (p Presenters) Say(ctx context.Context, state *State, entry Entry) error {
	var errs []error
	for _, pr := range p {
		errs = append(errs, pr.Say(ctx, state, entry))
	}
	return errors.Join(errs...)
}

func (p Presenters) Ask(ctx context.Context, state *State, prompt Prompt) error {
	var errs []error
	for _, pr := range p {
		errs = append(errs, pr.Ask(ctx, state, prompt))
	}
	return errors.Join(errs...)
}
