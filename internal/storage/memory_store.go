package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/devghori1264/aerophoenix/razord/internal/models"
)

// MemoryStore keeps nodes in process. Values are copied on the way in and
// out so callers never share state with the store.
type MemoryStore struct {
	keyedMutex

	mu       sync.RWMutex
	nodes    map[string]models.Node
	commands map[string]models.CommandRecord
	closed   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:    make(map[string]models.Node),
		commands: make(map[string]models.CommandRecord),
	}
}

func (s *MemoryStore) FindNode(ctx context.Context, name string) (*models.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	n, ok := s.nodes[name]
	if !ok {
		return nil, ErrNotFound
	}
	out := n.Clone()
	return &out, nil
}

func (s *MemoryStore) SaveNode(ctx context.Context, n *models.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.nodes[n.Name] = n.Clone()
	return nil
}

func (s *MemoryStore) ListNodes(ctx context.Context) ([]*models.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]*models.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		c := n.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) SaveCommand(ctx context.Context, c *models.CommandRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.commands[c.ID] = *c
	return nil
}

func (s *MemoryStore) ListCommands(ctx context.Context) ([]*models.CommandRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]*models.CommandRecord, 0, len(s.commands))
	for _, c := range s.commands {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
