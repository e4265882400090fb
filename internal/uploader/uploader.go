// Package uploader stores captured image bytes in object storage and hands
// back a public URL for the photo record.
package uploader

import (
	"context"
	"fmt"
)

// Result describes an uploaded object.
type Result struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// Uploader stores image bytes under the photos/<ownerID> folder convention.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType, ownerID string) (*Result, error)
}

// Config selects and parameterizes a backend.
type Config struct {
	Driver     string           `yaml:"driver"` // s3, cloudinary
	S3         S3Config         `yaml:"s3"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
}

// New creates an uploader for the configured driver.
func New(cfg Config) (Uploader, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Uploader(cfg.S3)
	case "cloudinary":
		return NewCloudinaryUploader(cfg.Cloudinary), nil
	default:
		return nil, fmt.Errorf("uploader: unknown driver %q", cfg.Driver)
	}
}
