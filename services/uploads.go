package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var (
	ErrInvalidImageData = errors.New("invalid image data format")
	ErrImageTooLarge    = errors.New("image exceeds maximum size")
)

// CloudinaryUploader uploads base64 image data URLs to Cloudinary and
// returns the hosted URL.
type CloudinaryUploader struct {
	cld      *cloudinary.Cloudinary
	maxBytes int
}

func NewCloudinaryUploader(cloudinaryURL string, maxBytes int) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure Cloudinary: %w", err)
	}

	return &CloudinaryUploader{
		cld:      cld,
		maxBytes: maxBytes,
	}, nil
}

// UploadDataURL pushes a data:image/... URL to Cloudinary. Cloudinary parses
// the data URL itself, so the payload is passed through untouched.
func (u *CloudinaryUploader) UploadDataURL(ctx context.Context, dataURL, folder string) (string, error) {
	if !strings.HasPrefix(dataURL, "data:image") {
		return "", ErrInvalidImageData
	}
	if u.maxBytes > 0 && len(dataURL) > u.maxBytes {
		return "", ErrImageTooLarge
	}

	resp, err := u.cld.Upload.Upload(ctx, dataURL, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return resp.SecureURL, nil
}
