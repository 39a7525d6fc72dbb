package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		key  string
		want string
	}{
		{
			name: "cdn wins",
			cfg:  S3Config{Bucket: "media", CDN: "https://cdn.example.com/", Endpoint: "http://minio:9000"},
			key:  "products/a.png",
			want: "https://cdn.example.com/products/a.png",
		},
		{
			name: "endpoint with bucket path",
			cfg:  S3Config{Bucket: "media", Endpoint: "http://minio:9000"},
			key:  "products/a.png",
			want: "http://minio:9000/media/products/a.png",
		},
		{
			name: "plain aws",
			cfg:  S3Config{Bucket: "media"},
			key:  "products/a.png",
			want: "https://media.s3.amazonaws.com/products/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &S3Storage{cfg: tt.cfg}
			assert.Equal(t, tt.want, s.publicURL(tt.key))
		})
	}
}

func TestS3KeyFromURLRoundTrips(t *testing.T) {
	cfgs := []S3Config{
		{Bucket: "media", CDN: "https://cdn.example.com"},
		{Bucket: "media", Endpoint: "http://minio:9000"},
		{Bucket: "media"},
	}

	for _, cfg := range cfgs {
		s := &S3Storage{cfg: cfg}
		url := s.publicURL("products/deep/a.png")
		assert.Equal(t, "products/deep/a.png", s.keyFromURL(url))
	}
}

func TestS3KeyFromURLRejectsForeignURLs(t *testing.T) {
	s := &S3Storage{cfg: S3Config{Bucket: "media", CDN: "https://cdn.example.com"}}

	assert.Empty(t, s.keyFromURL("https://other.example.com/products/a.png"))
	assert.Empty(t, s.keyFromURL("https://elsewhere.s3.amazonaws.com/products/a.png"))
}

func TestCloudinaryPublicIDFromURL(t *testing.T) {
	id, err := publicIDFromURL("https://res.cloudinary.com/demo/image/upload/v1740815725/products/abc123.png")
	require.NoError(t, err)
	assert.Equal(t, "products/abc123", id)

	id, err = publicIDFromURL("https://res.cloudinary.com/demo/image/upload/products/abc123.png")
	require.NoError(t, err)
	assert.Equal(t, "products/abc123", id)

	_, err = publicIDFromURL("https://res.cloudinary.com/demo/image/abc123.png")
	assert.Error(t, err)
}

func TestStripExtension(t *testing.T) {
	assert.Equal(t, "products/a", stripExtension("products/a.png"))
	assert.Equal(t, "products/no-ext", stripExtension("products/no-ext"))
	assert.Equal(t, "products/v1.2/a", stripExtension("products/v1.2/a.png"))
}
