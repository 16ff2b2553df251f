package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/devghori1264/aerophoenix/razord/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("store closed")
)

// Store interface (kept minimal, allows swapping implementations).
// Any error other than ErrNotFound is an infrastructure failure.
type Store interface {
	FindNode(ctx context.Context, name string) (*models.Node, error)
	SaveNode(ctx context.Context, n *models.Node) error
	ListNodes(ctx context.Context) ([]*models.Node, error)

	SaveCommand(ctx context.Context, c *models.CommandRecord) error
	ListCommands(ctx context.Context) ([]*models.CommandRecord, error)

	// Lock serializes read-modify-write cycles on one node name.
	Lock(name string) (unlock func())

	Close() error
}

// keyedMutex hands out one mutex per key so operations on the same node
// serialize while different nodes proceed in parallel. An entry lives only
// while someone holds or waits for it.
type keyedMutex struct {
	guard sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) func() {
	k.guard.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.guard.Unlock()

	e.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.Unlock()
			k.guard.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.locks, key)
			}
			k.guard.Unlock()
		})
	}
}

// held reports how many keys currently have an entry.
func (k *keyedMutex) held() int {
	k.guard.Lock()
	defer k.guard.Unlock()
	return len(k.locks)
}
