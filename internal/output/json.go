package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Harvard-ATG/canvas-lateness-tool/internal/report"
)

// WriteSnapshot writes the JSON snapshot to path, indented for human
// inspection. The snapshot is a per-run artifact, separate from the
// cache.
func WriteSnapshot(path string, snap report.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
