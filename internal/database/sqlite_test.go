package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"CoverBot/bot/journey"
	"CoverBot/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "data", "journeys.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteLoadMissing(t *testing.T) {
	s := newTestSQLite(t)

	state, err := s.Load(context.Background(), "motor", "nope")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	state := journey.NewState("motor", "j-1", "vehicle_type", journey.Patch{
		"vehicleType": "car",
		"ncb":         20,
		"addOns":      []string{"zero_dep"},
		"vehicle":     entity.Vehicle{Registration: "MH12AB1234", Brand: "Maruti"},
	})
	state.Now = now
	state.Status = journey.StatusAwaiting
	state.Transcript = append(state.Transcript, journey.Entry{Role: journey.RoleBot, StepID: "vehicle_type", Text: "hi", At: now})

	require.NoError(t, s.Save(ctx, state))

	got, err := s.Load(ctx, "motor", "j-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, journey.StepID("vehicle_type"), got.CurrentStep)
	assert.Equal(t, journey.StatusAwaiting, got.Status)
	assert.True(t, now.Equal(got.Now))
	assert.Equal(t, "car", got.GetString("vehicleType"))
	assert.Equal(t, 20, got.GetInt("ncb"))
	assert.Equal(t, []string{"zero_dep"}, got.GetStrings("addOns"))
	v, ok := journey.Get[entity.Vehicle](got, "vehicle")
	require.True(t, ok)
	assert.Equal(t, "MH12AB1234", v.Registration)
	require.Len(t, got.Transcript, 1)
}

func TestSQLiteUpsertAndDelete(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	state := journey.NewState("motor", "j-2", "vehicle_type", nil)
	require.NoError(t, s.Save(ctx, state))

	state.CurrentStep = "registration"
	require.NoError(t, s.Save(ctx, state))

	got, err := s.Load(ctx, "motor", "j-2")
	require.NoError(t, err)
	assert.Equal(t, journey.StepID("registration"), got.CurrentStep)

	other, err := s.Load(ctx, "health", "j-2")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, s.Delete(ctx, "motor", "j-2"))
	got, err = s.Load(ctx, "motor", "j-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}
