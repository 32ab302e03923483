package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"placementhub/internal/infra/persistence/memory"
)

// FileSource reads a snapshot document from disk. Files ending in .json are
// decoded as JSON; anything else is treated as YAML.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return "file:" + f.Path }

func (f FileSource) Load(ctx context.Context) (memory.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return memory.Snapshot{}, err
	}
	if f.Path == "" {
		return memory.Snapshot{}, errors.New("seed file path required")
	}
	raw, err := os.ReadFile(f.Path) //nolint:gosec // operator-supplied seed path
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("read seed file: %w", err)
	}
	var snap memory.Snapshot
	if strings.EqualFold(filepath.Ext(f.Path), ".json") {
		err = json.Unmarshal(raw, &snap)
	} else {
		err = yaml.Unmarshal(raw, &snap)
	}
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("decode seed file %s: %w", f.Path, err)
	}
	return snap, nil
}
