package core

import (
	"CoverBot/internal/lib/fileurl"
	"CoverBot/internal/service/documents"
	"context"
	"errors"
)

var ErrLinkInvalid = errors.New("download link is invalid or expired")

// DocumentURL returns a signed, expiring download path for a policy document.
func (c *Core) DocumentURL(ctx context.Context, product, id, docID string) (string, error) {
	if c.engine == nil || c.fileSecret == "" {
		return "", ErrNotConfigured
	}
	state, err := c.engine.Get(ctx, product, id)
	if err != nil {
		return "", err
	}
	// render once so a missing policy or unknown document fails here, not on download
	if _, err = documents.Render(docID, state); err != nil {
		return "", err
	}
	return fileurl.SignURL(product, id, docID, c.fileSecret, c.fileTTL, c.clock()), nil
}

// Document verifies a signed link and renders the document it points at.
func (c *Core) Document(ctx context.Context, product, id, docID, expires, sig string) (documents.Document, error) {
	if c.engine == nil || c.fileSecret == "" {
		return documents.Document{}, ErrNotConfigured
	}
	if !fileurl.Verify(product, id, docID, expires, sig, c.fileSecret, c.clock()) {
		return documents.Document{}, ErrLinkInvalid
	}
	state, err := c.engine.Get(ctx, product, id)
	if err != nil {
		return documents.Document{}, err
	}
	return documents.Render(docID, state)
}
