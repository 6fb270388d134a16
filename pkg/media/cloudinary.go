package media

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/sanatan-blog/acharyas-gurus-api/pkg/config"
)

// CropRect describes a client-supplied crop region in source pixels.
type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Uploader stores images on the Cloudinary CDN.
type Uploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewUploader constructs an Uploader from the CLOUDINARY_URL credential.
func NewUploader(cfg config.MediaConfig) (*Uploader, error) {
	if cfg.CloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary URL not configured")
	}
	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	folder := cfg.UploadFolder
	if folder == "" {
		folder = "acharyas-gurus/profiles"
	}
	return &Uploader{cld: cld, folder: folder}, nil
}

// UploadProfileImage stores the image and returns its delivery URL and
// public ID. Without an explicit crop the CDN fills a 400x400 square
// centred on the detected face.
func (u *Uploader) UploadProfileImage(ctx context.Context, r io.Reader, crop *CropRect) (string, string, error) {
	transformation := "w_400,h_400,c_fill,g_face,q_auto,f_auto"
	if crop != nil {
		transformation = fmt.Sprintf("x_%d,y_%d,w_%d,h_%d,c_crop", crop.X, crop.Y, crop.Width, crop.Height)
	}

	resp, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         u.folder,
		Transformation: transformation,
	})
	if err != nil {
		return "", "", fmt.Errorf("upload image: %w", err)
	}
	return resp.SecureURL, resp.PublicID, nil
}

// Delete removes a previously uploaded asset.
func (u *Uploader) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if _, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("delete image %s: %w", publicID, err)
	}
	return nil
}
