package document

import (
	"context"
	"io"
)

// Store persists uploaded verification documents. Save returns the storage
// path the record should reference.
type Store interface {
	Save(ctx context.Context, name string, content io.Reader) (string, error)
}
