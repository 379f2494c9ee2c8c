package core

import (
	"CoverBot/entity"
	"CoverBot/internal/lib/sl"
	"crypto/subtle"
	"errors"
	"log/slog"
)

var ErrUnauthorized = errors.New("invalid api key")

// AuthenticateByToken accepts the configured operator key or a key issued in the repository.
func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	if c.authKey != "" && subtle.ConstantTimeCompare([]byte(token), []byte(c.authKey)) == 1 {
		return &entity.UserAuth{Username: entity.InternalUser, Token: token}, nil
	}
	if c.repo == nil {
		return nil, ErrUnauthorized
	}
	username, err := c.repo.CheckApiKey(token)
	if err != nil {
		c.log.Debug("api key rejected", sl.Secret("token", token), sl.Err(err))
		return nil, ErrUnauthorized
	}
	return &entity.UserAuth{Username: username, Token: token}, nil
}

// ValidateToken returns the username behind a token; used by the web socket upgrade.
func (c *Core) ValidateToken(token string) (string, error) {
	user, err := c.AuthenticateByToken(token)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// IssueApiKey creates or returns the repository key of an operator.
func (c *Core) IssueApiKey(username string) (string, error) {
	if c.repo == nil {
		return "", errors.New("repository not configured")
	}
	key, err := c.repo.GenerateApiKey(username)
	if err != nil {
		c.log.Error("issue api key", slog.String("username", username), sl.Err(err))
		return "", err
	}
	return key, nil
}
