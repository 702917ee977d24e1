// Package fs persists bridge status snapshots on the local filesystem.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/internal/ports"
)

// StatusFileName is the snapshot file written inside the status directory.
const StatusFileName = "status.json"

// StatusFile implements ports.StatusRepository as a JSON document.
type StatusFile struct {
	dir string
}

var _ ports.StatusRepository = (*StatusFile)(nil)

// NewStatusFile returns a repository rooted at dir. The directory is
// created on first Save.
func NewStatusFile(dir string) *StatusFile {
	return &StatusFile{dir: dir}
}

// Load reads the last snapshot. A missing file yields a zero Status.
func (r *StatusFile) Load(ctx context.Context) (domain.Status, error) {
	if err := ctx.Err(); err != nil {
		return domain.Status{}, err
	}

	data, err := os.ReadFile(r.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Status{}, nil
		}
		return domain.Status{}, err
	}

	var status domain.Status
	if err := json.Unmarshal(data, &status); err != nil {
		return domain.Status{}, fmt.Errorf("decode %s: %w", r.Path(), err)
	}
	return status, nil
}

// Save writes status to a temp file and renames it over the snapshot,
// so readers never observe a partial document.
func (r *StatusFile) Save(ctx context.Context, status domain.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Path returns the snapshot's full path.
func (r *StatusFile) Path() string {
	return filepath.Join(r.dir, StatusFileName)
}
