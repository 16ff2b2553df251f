package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/devghori1264/aerophoenix/razord/internal/models"
	badger "github.com/dgraph-io/badger/v4"
)

const (
	nodePrefix    = "node:"
	commandPrefix = "command:"
)

// BadgerStore implements Store with Badger DB.
type BadgerStore struct {
	keyedMutex
	db *badger.DB
}

// NewBadgerStore opens a store at path. An empty path opens an in-memory
// database, which is what the tests use.
func NewBadgerStore(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Clean(path))
		opts = opts.WithValueLogFileSize(1 << 20) // smaller value log for local dev
	}
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func nodeKey(name string) []byte {
	return []byte(nodePrefix + name)
}

func commandKey(id string) []byte {
	return []byte(commandPrefix + id)
}

func (s *BadgerStore) FindNode(ctx context.Context, name string) (*models.Node, error) {
	var out models.Node
	if err := s.get(nodeKey(name), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *BadgerStore) SaveNode(ctx context.Context, n *models.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	return s.put(nodeKey(n.Name), n)
}

func (s *BadgerStore) ListNodes(ctx context.Context) ([]*models.Node, error) {
	var out []*models.Node
	err := s.scan([]byte(nodePrefix), func(v []byte) error {
		var n models.Node
		if err := json.Unmarshal(v, &n); err != nil {
			return err
		}
		out = append(out, &n)
		return nil
	})
	return out, err
}

func (s *BadgerStore) SaveCommand(ctx context.Context, c *models.CommandRecord) error {
	return s.put(commandKey(c.ID), c)
}

func (s *BadgerStore) ListCommands(ctx context.Context) ([]*models.CommandRecord, error) {
	var out []*models.CommandRecord
	err := s.scan([]byte(commandPrefix), func(v []byte) error {
		var c models.CommandRecord
		if err := json.Unmarshal(v, &c); err != nil {
			return err
		}
		out = append(out, &c)
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, err
}

func (s *BadgerStore) put(key []byte, v any) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func (s *BadgerStore) get(key []byte, v any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(b []byte) error {
			return json.Unmarshal(b, v)
		})
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

func (s *BadgerStore) scan(prefix []byte, fn func(v []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}
