package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"photo-journal-backend/internal/models"
)

// CloudinaryConfig holds settings for the unsigned HTTP upload backend. The
// preset must be configured as unsigned on the provider side.
type CloudinaryConfig struct {
	CloudName    string `yaml:"cloud_name"`
	UploadPreset string `yaml:"upload_preset"`
	BaseURL      string `yaml:"base_url"` // override for tests; default is the public API
}

// CloudinaryUploader performs unsigned multipart uploads.
type CloudinaryUploader struct {
	cfg  CloudinaryConfig
	http *http.Client
}

// NewCloudinaryUploader creates the HTTP upload backend.
func NewCloudinaryUploader(cfg CloudinaryConfig) *CloudinaryUploader {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cloudinary.com/v1_1"
	}
	return &CloudinaryUploader{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type cloudinaryResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the image as a multipart form with the unsigned preset and
// the photos/<ownerID> folder convention.
func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, contentType, ownerID string) (*Result, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	file, err := form.CreateFormFile("file", fmt.Sprintf("photo_%d.jpg", time.Now().UnixMilli()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}
	if _, err := file.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}
	if err := form.WriteField("upload_preset", u.cfg.UploadPreset); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}
	if err := form.WriteField("folder", "photos/"+ownerID); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}

	url := fmt.Sprintf("%s/%s/image/upload", u.cfg.BaseURL, u.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	var result cloudinaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", models.ErrUploadFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := "upload rejected"
		if result.Error != nil {
			msg = result.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", models.ErrUploadFailed, msg)
	}

	return &Result{
		PublicID: result.PublicID,
		URL:      result.SecureURL,
		Width:    result.Width,
		Height:   result.Height,
	}, nil
}
