package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// RecentRepository implements repository.RecentRepository on the local
// filesystem, one JSON file per device. It backs deployments without Redis
// and survives restarts; writes go through a temp file and rename so a crash
// mid-write never leaves a half-written list.
type RecentRepository struct {
	dir string
}

// NewRecentRepository creates a file-backed recently-viewed repository
// rooted at dir, creating the directory if needed.
func NewRecentRepository(dir string) (*RecentRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recent items dir: %w", err)
	}
	return &RecentRepository{dir: dir}, nil
}

// Load retrieves the device's recently-viewed list.
func (r *RecentRepository) Load(_ context.Context, deviceID string) ([]domain.RecentItem, error) {
	data, err := os.ReadFile(r.path(deviceID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("recent items", deviceID)
		}
		return nil, fmt.Errorf("read recent items: %w", err)
	}

	var items []domain.RecentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, apperrors.CorruptData("recent items", err)
	}

	return items, nil
}

// Save persists the device's recently-viewed list atomically. An empty list
// removes the file.
func (r *RecentRepository) Save(_ context.Context, deviceID string, items []domain.RecentItem) error {
	path := r.path(deviceID)

	if len(items) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove recent items: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal recent items: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write recent items: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace recent items: %w", err)
	}

	return nil
}

// path maps a device ID to a filename, replacing separators so a hostile ID
// cannot escape the directory.
func (r *RecentRepository) path(deviceID string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(deviceID)
	return filepath.Join(r.dir, safe+".json")
}
