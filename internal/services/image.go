package services

import "context"

// ImageService defines the interface for the image generation API.
type ImageService interface {
	// GenerateImage renders one image for the prompt and returns the
	// raw bytes. Any non-2xx status, network error or timeout is a
	// failure wrapping chat.ErrGenerationUnavailable.
	GenerateImage(ctx context.Context, prompt string, resolution string) ([]byte, error)
}

// DefaultResolution is the standard location image size.
const DefaultResolution = "1024x1024"
