// Package media stores uploaded post images and serves them back by generated name.
package media

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"inkwell/internal/config"

	"github.com/google/uuid"
)

// URLPrefix is the public path under which stored media is served.
const URLPrefix = "/uploads/"

// ErrNotFound is returned when a stored object does not exist or the name is not a valid
// generated name.
var ErrNotFound = errors.New("media not found")

var (
	extPattern  = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)
	namePattern = regexp.MustCompile(`^[0-9]+-[0-9a-f]{8}(\.[a-z0-9]{1,10})?$`)
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Object is a stored file read back for serving.
type Object struct {
	Data        []byte
	ContentType string
}

// Store persists uploads under generated names.
type Store interface {
	// Save stores the upload and returns its public URL.
	Save(ctx context.Context, upload Upload) (string, error)
	Open(ctx context.Context, name string) (*Object, error)
	Remove(ctx context.Context, name string) error
}

// New builds the Store selected by MEDIA_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.MediaBackend {
	case "minio":
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	case "disk", "":
		return NewDiskStore(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unsupported media backend %q", cfg.MediaBackend)
	}
}

// GenerateName returns "<unix-millis>-<8 hex chars><ext>" for an upload named original.
// The extension is kept only when it is short and alphanumeric.
func GenerateName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), suffix, ext)
}

// ValidName reports whether name has the shape produced by GenerateName. Anything else,
// including names with path separators or "..", is rejected.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// URL returns the public URL of a stored name.
func URL(name string) string {
	return URLPrefix + name
}

// NameFromURL extracts the stored name from a URL produced by URL.
func NameFromURL(url string) (string, bool) {
	name, ok := strings.CutPrefix(url, URLPrefix)
	if !ok || !ValidName(name) {
		return "", false
	}
	return name, true
}

// contentTypeFor picks a content type from the extension, falling back to sniffing data.
func contentTypeFor(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
