package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"templora/internal/service"
)

// MockUploadService is a mock implementation of service.UploadService.
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) InitMultipart(ctx context.Context, input service.MultipartInitInput) (*service.MultipartInitOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MultipartInitOutput), args.Error(1)
}

func (m *MockUploadService) CompleteMultipart(ctx context.Context, input service.MultipartCompleteInput) (*service.MultipartCompleteOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MultipartCompleteOutput), args.Error(1)
}

func (m *MockUploadService) AbortMultipart(ctx context.Context, uploadID, key, bucket string) {
	m.Called(ctx, uploadID, key, bucket)
}

func (m *MockUploadService) SimpleUpload(ctx context.Context, input service.SimpleUploadInput) (*service.MultipartCompleteOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MultipartCompleteOutput), args.Error(1)
}
