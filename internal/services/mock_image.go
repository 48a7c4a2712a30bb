package services

import (
	"context"
	"sync"
)

// MockImageService is a mock implementation of ImageService for testing.
type MockImageService struct {
	GenerateImageFunc func(ctx context.Context, prompt string, resolution string) ([]byte, error)

	GenerateImageCalls []string // prompts, in call order

	mu sync.Mutex
}

// NewMockImageService creates a new mock image service.
func NewMockImageService() *MockImageService {
	return &MockImageService{
		GenerateImageCalls: make([]string, 0),
	}
}

// GenerateImage mocks image generation. The default returns a tiny
// non-empty payload.
func (m *MockImageService) GenerateImage(ctx context.Context, prompt string, resolution string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateImageCalls = append(m.GenerateImageCalls, prompt)
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, prompt, resolution)
	}
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}, nil
}

// SetGenerateImageError sets up the mock to fail generation.
func (m *MockImageService) SetGenerateImageError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateImageFunc = func(ctx context.Context, prompt string, resolution string) ([]byte, error) {
		return nil, err
	}
}

// CallCount reports the number of generation calls.
func (m *MockImageService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateImageCalls)
}
