package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CycleRecord captures one refresh cycle for diagnostics and analysis.
type CycleRecord struct {
	Timestamp   time.Time         `json:"timestamp"`
	CycleNumber int               `json:"cycle_number"`
	Strategy    string            `json:"strategy"` // "batch" or "staggered"
	Attempted   []string          `json:"attempted,omitempty"`
	Succeeded   []string          `json:"succeeded,omitempty"`
	Failures    map[string]string `json:"failures,omitempty"` // symbol -> failure reason
	Duration    time.Duration     `json:"duration_ns"`
}

// Writer persists cycle records to a directory as JSON files (journal style).
// Safe for use from multiple refresh loops.
type Writer struct {
	mu    sync.Mutex
	dir   string
	seq   int
	nowFn func() time.Time
}

// NewWriter constructs a journal writer.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// WriteCycle writes a cycle record to a timestamped JSON file and returns
// its path.
func (w *Writer) WriteCycle(rec *CycleRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.seq++
	rec.CycleNumber = w.seq
	name := fmt.Sprintf("cycle_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), w.seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
