package authenticate

import (
	"CoverBot/entity"
	"CoverBot/internal/lib/api/cont"
	"CoverBot/internal/lib/api/response"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keys map[string]string

func (k keys) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	user, ok := k[token]
	if !ok {
		return nil, errors.New("invalid api key")
	}
	return &entity.UserAuth{Username: user, Token: token}, nil
}

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, *entity.UserAuth) {
	t.Helper()
	var caller *entity.UserAuth
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller = cont.GetUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(log, keys{"k-123": "asha"})(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, caller
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		err    error
	}{
		{"", "", ErrNoHeader},
		{"Bearer k-123", "k-123", nil},
		{"bearer   k-123 ", "k-123", nil},
		{"Basic a2V5Og==", "", ErrNoToken},
		{"Bearer", "", ErrNoToken},
		{"Bearer   ", "", ErrNoToken},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		token, err := BearerToken(req)
		assert.ErrorIs(t, err, tt.err, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestRejectsMissingOrUnknownKey(t *testing.T) {
	for _, header := range []string{"", "Token k-123", "Bearer k-999"} {
		rec, caller := serve(t, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Nil(t, caller, header)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer", header)

		var body response.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.NotEmpty(t, body.StatusMessage)
	}
}

func TestPutsCallerIntoContext(t *testing.T) {
	rec, caller := serve(t, "Bearer k-123")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, caller)
	assert.Equal(t, "asha", caller.Username)
	assert.Equal(t, "asha", rec.Header().Get("X-User"))
}
