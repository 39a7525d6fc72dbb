package media

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// DefaultMaxBytes caps decoded inline payloads at 10 MiB.
const DefaultMaxBytes = 10 << 20

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var imageFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "ico": true, "x-icon": true, "webp": true, "svg": true,
}

var videoFormats = map[string]bool{
	"mp4": true, "avi": true, "mov": true, "wmv": true, "flv": true, "webm": true,
}

// ValidationError reports an unusable media entry: unknown payload shape,
// unsupported format, or an oversize inline payload. Index is the position
// of the offending entry in the submitted list.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("media entry %d: %s", e.Index, e.Reason)
}

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ParseDataURI splits an inline payload of the form
// data:<type>/<subtype>;base64,<payload> into its normalized extension and
// raw base64 payload. svg+xml normalizes to svg, x-icon to ico.
func ParseDataURI(s string) (ext, payload string, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", "", fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("missing payload delimiter")
	}
	mimeType, _, _ := strings.Cut(meta, ";")
	_, subtype, ok := strings.Cut(mimeType, "/")
	if !ok || subtype == "" {
		return "", "", fmt.Errorf("missing mime subtype")
	}

	ext = strings.ToLower(subtype)
	switch ext {
	case "svg+xml":
		ext = "svg"
	case "x-icon":
		ext = "ico"
	}
	return ext, payload, nil
}

// SupportedFormat reports whether ext is allowed for the given media kind.
func SupportedFormat(kind Kind, ext string) bool {
	switch kind {
	case KindVideo:
		return videoFormats[strings.ToLower(ext)]
	default:
		return imageFormats[strings.ToLower(ext)]
	}
}

// Decode decodes a base64 payload and enforces the size cap. maxBytes <= 0
// falls back to DefaultMaxBytes.
func Decode(payload string, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("payload is %d bytes, limit is %d", len(data), maxBytes)
	}
	return data, nil
}

// MIMEForExtension maps a file extension to its content type.
func MIMEForExtension(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "webp":
		return "image/webp"
	case "svg":
		return "image/svg+xml"
	case "ico":
		return "image/x-icon"
	case "mp4":
		return "video/mp4"
	case "avi":
		return "video/x-msvideo"
	case "mov":
		return "video/quicktime"
	case "wmv":
		return "video/x-ms-wmv"
	case "flv":
		return "video/x-flv"
	case "webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}
