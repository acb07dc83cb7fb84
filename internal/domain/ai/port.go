package ai

import "context"

// ImageRequest is one vision call: system instruction, user text and one image.
type ImageRequest struct {
	System    string
	Prompt    string
	Image     []byte
	ImageMIME string
}

// VisionClient port: returns the model's raw text.
type VisionClient interface {
	DescribeImage(ctx context.Context, req ImageRequest) (string, error)
	Model() string
}
