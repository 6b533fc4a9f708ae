package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendAssetPublishedEmail(ctx context.Context, toEmail, toName, assetTitle, assetSlug string) error {
	args := m.Called(ctx, toEmail, toName, assetTitle, assetSlug)
	return args.Error(0)
}
