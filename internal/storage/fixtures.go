package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/devghori1264/aerophoenix/razord/internal/models"
)

// LoadFixtures seeds the store from a JSON array of nodes. Existing nodes
// with the same name are left alone, so restarts never overwrite state.
func LoadFixtures(ctx context.Context, s Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read fixtures: %w", err)
	}
	var nodes []models.Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return 0, fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now().UTC()
	added := 0
	for i := range nodes {
		n := &nodes[i]
		_, err := s.FindNode(ctx, n.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return added, err
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		n.UpdatedAt = now
		if n.Version == 0 {
			n.Version = 1
		}
		if err := s.SaveNode(ctx, n); err != nil {
			return added, fmt.Errorf("seed node %q: %w", n.Name, err)
		}
		added++
	}
	return added, nil
}
