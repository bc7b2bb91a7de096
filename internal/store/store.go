package store

import (
	"fmt"

	"qahub/internal/types"
)

// Open creates the TableStore selected by backend. path is ignored for
// the memory backend.
func Open(backend, path string) (types.TableStore, error) {
	switch backend {
	case "sqlite":
		return NewSQLiteStore(path)
	case "json":
		return NewJSONStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
