package state

import (
	"fmt"

	"github.com/teamcutter/patches/internal/domain"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Open returns the history store for backend.
func Open(backend, dbPath, jsonPath string) (domain.History, error) {
	switch backend {
	case BackendSQLite, "":
		h, err := NewSQLite(dbPath, jsonPath)
		if err != nil {
			return nil, err
		}
		return h, nil
	case BackendJSON:
		return NewJSON(jsonPath), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}
