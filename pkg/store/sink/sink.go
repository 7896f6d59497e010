package sink

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Sink stores a finished document and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, destination string, content []byte, contentType string) (string, error)
}

// IsObjectStorage reports whether destination names an s3://bucket/key location.
func IsObjectStorage(destination string) bool {
	return strings.HasPrefix(destination, "s3://")
}

// ParseObjectURL splits s3://bucket/key into its bucket and key.
func ParseObjectURL(destination string) (string, string, error) {
	u, err := url.Parse(destination)
	if err != nil {
		return "", "", fmt.Errorf("invalid object destination %q: %w", destination, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid object destination %q: expected s3://bucket/key", destination)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("invalid object destination %q: missing object key", destination)
	}
	return u.Host, key, nil
}
