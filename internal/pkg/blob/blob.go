package blob

import "context"

// Storage stores opaque blobs under a key and returns a publicly reachable URL.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
