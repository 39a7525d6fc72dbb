package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage is the alternate backend, selected with
// STORAGE_BACKEND=cloudinary. Keys keep the same products/<uuid>.<ext>
// shape; the extension is stripped because Cloudinary public IDs carry none.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudinaryURL string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

func (c *CloudinaryStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:  stripExtension(key),
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", &Error{Op: "upload", Key: key, Err: err}
	}
	return resp.SecureURL, nil
}

func (c *CloudinaryStorage) Delete(ctx context.Context, fileURL string) error {
	publicID, err := publicIDFromURL(fileURL)
	if err != nil {
		return &Error{Op: "delete", Key: fileURL, Err: err}
	}
	if _, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return &Error{Op: "delete", Key: publicID, Err: err}
	}
	return nil
}

func (c *CloudinaryStorage) Exists(ctx context.Context, key string) (bool, error) {
	res, err := c.cld.Admin.Asset(ctx, admin.AssetParams{PublicID: stripExtension(key)})
	if err != nil {
		return false, &Error{Op: "head", Key: key, Err: err}
	}
	if res.Error.Message != "" {
		return false, nil
	}
	return true, nil
}

func stripExtension(key string) string {
	if i := strings.LastIndex(key, "."); i > strings.LastIndex(key, "/") {
		return key[:i]
	}
	return key
}

// publicIDFromURL extracts the asset public ID from a Cloudinary delivery
// URL: everything after the /upload/ segment, minus the version prefix and
// the file extension.
func publicIDFromURL(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	parts := strings.Split(parsed.Path, "/")
	for i, part := range parts {
		if part != "upload" || i+1 >= len(parts) {
			continue
		}
		rest := parts[i+1:]
		if len(rest) > 1 && strings.HasPrefix(rest[0], "v") {
			rest = rest[1:] // drop version segment
		}
		return stripExtension(strings.Join(rest, "/")), nil
	}
	return "", errors.New("no upload segment in url")
}
