package authenticate

import (
	"CoverBot/entity"
	"CoverBot/internal/lib/api/cont"
	"CoverBot/internal/lib/api/response"
	"CoverBot/internal/lib/sl"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

var (
	ErrNoHeader = errors.New("authorization header not found")
	ErrNoToken  = errors.New("bearer token not found")
)

type Authenticate interface {
	AuthenticateByToken(token string) (*entity.UserAuth, error)
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", ErrNoHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrNoToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// New rejects requests without a valid api key and puts the caller into the
// request context for the handlers.
func New(log *slog.Logger, auth Authenticate) func(next http.Handler) http.Handler {
	log = log.With(sl.Module("middleware.authenticate"))

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			id := middleware.GetReqID(r.Context())
			remote := r.RemoteAddr
			if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
				remote = forwarded
			}
			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", remote),
				slog.String("request_id", id),
			}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set("X-Request-ID", id)

			started := time.Now()
			defer func() {
				level := slog.LevelInfo
				if ww.Status() == http.StatusUnauthorized {
					level = slog.LevelWarn
				}
				log.Log(r.Context(), level, "incoming request", append(attrs,
					slog.Int("status", ww.Status()),
					slog.Int("size", ww.BytesWritten()),
					slog.Float64("duration", time.Since(started).Seconds()),
				)...)
			}()

			token, err := BearerToken(r)
			if err != nil {
				attrs = append(attrs, sl.Err(err))
				unauthorized(ww, r, err.Error())
				return
			}
			attrs = append(attrs, sl.Secret("token", token))

			user, err := auth.AuthenticateByToken(token)
			if err != nil {
				attrs = append(attrs, sl.Err(err))
				unauthorized(ww, r, "invalid api key")
				return
			}
			attrs = append(attrs, slog.String("user", user.Username))

			ww.Header().Set("X-User", user.Username)
			next.ServeHTTP(ww, r.WithContext(cont.PutUser(r.Context(), user)))
		}

		return http.HandlerFunc(fn)
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="coverbot"`)
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(message))
}
