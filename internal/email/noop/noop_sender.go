package noop

import (
	"context"
	"fmt"
	"log"

	"templora/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates a no-op EmailSender that logs notifications to stdout.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendAssetPublishedEmail(_ context.Context, toEmail, toName, assetTitle, assetSlug string) error {
	assetURL := fmt.Sprintf("%s/assets/%s", s.frontendURL, assetSlug)
	log.Printf("[NOOP EMAIL] Asset published notice for %s (%s): %q %s", toName, toEmail, assetTitle, assetURL)
	return nil
}
