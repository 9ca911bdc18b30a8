package out

import (
	"context"
	"time"
)

// ResultCache caches classification results keyed by a digest of the
// normalized text. The cache is advisory: errors are logged and ignored by
// the caller, and a nil cache is valid.
type ResultCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
