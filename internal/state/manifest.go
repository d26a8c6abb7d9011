package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/teamcutter/patches/internal/domain"
)

type journal struct {
	Detections []domain.Detection `json:"detections"`
}

// JSONHistory keeps detections in a single JSON file, oldest first on disk.
type JSONHistory struct {
	mu      sync.RWMutex
	path    string
	journal *journal
}

func NewJSON(path string) *JSONHistory {
	return &JSONHistory{
		path: path,
	}
}

func (h *JSONHistory) init() error {
	if h.journal != nil {
		return nil
	}
	j, err := readJournal(h.path)
	if err != nil {
		return err
	}
	h.journal = j
	return nil
}

func readJournal(path string) (*journal, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &journal{}, nil
	}
	if err != nil {
		return nil, err
	}

	var j journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (h *JSONHistory) flush() error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(h.journal, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(h.path, data, 0644)
}

func (h *JSONHistory) Record(d domain.Detection) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.init(); err != nil {
		return err
	}
	h.journal.Detections = append(h.journal.Detections, d)
	return h.flush()
}

func (h *JSONHistory) List(name string, limit int) ([]domain.Detection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.init(); err != nil {
		return nil, err
	}

	var out []domain.Detection
	for _, d := range slices.Backward(h.journal.Detections) {
		if name != "" && d.Package.Name() != name {
			continue
		}
		out = append(out, d)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (h *JSONHistory) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.journal = &journal{}
	return h.flush()
}

func (h *JSONHistory) Close() error {
	return nil
}
