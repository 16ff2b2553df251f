package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devghori1264/aerophoenix/razord/internal/models"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	bs, err := NewBadgerStore(filepath.Join(t.TempDir(), "badger"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })
	return map[string]Store{
		"badger": bs,
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			n := &models.Node{
				Name:        "node 1",
				Policy:      &models.Policy{Name: "centos", TaskName: "centos", Enabled: true},
				Installed:   "centos",
				InstalledAt: &at,
				BootCount:   2,
			}
			require.NoError(t, s.SaveNode(ctx, n))

			got, err := s.FindNode(ctx, "node 1")
			require.NoError(t, err)
			assert.Equal(t, "centos", got.Policy.Name)
			assert.True(t, got.InstalledAt.Equal(at))
			assert.Equal(t, 2, got.BootCount)

			_, err = s.FindNode(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			all, err := s.ListNodes(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestStoreRejectsBrokenInvariant(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.SaveNode(context.Background(), &models.Node{Name: "n", Installed: "x"})
			assert.ErrorIs(t, err, models.ErrInstalledAtMismatch)
		})
	}
}

func TestStoreCommands(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveCommand(ctx, &models.CommandRecord{ID: "b", Command: "reinstall-node", SubmittedAt: base.Add(time.Second)}))
			require.NoError(t, s.SaveCommand(ctx, &models.CommandRecord{ID: "a", Command: "reinstall-node", SubmittedAt: base}))
			all, err := s.ListCommands(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "a", all[0].ID)
			assert.Equal(t, "b", all[1].ID)
		})
	}
}

func TestLockSerializesSameKey(t *testing.T) {
	s := NewMemoryStore()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock("node1")
			defer unlock()
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestLockEntriesReleased(t *testing.T) {
	s := NewMemoryStore()
	for i := 0; i < 100; i++ {
		unlock := s.Lock(fmt.Sprintf("not really an existing node %d", i))
		unlock()
		unlock()
	}
	assert.Equal(t, 0, s.held())

	unlock := s.Lock("node1")
	done := make(chan struct{})
	go func() {
		release := s.Lock("node1")
		release()
		close(done)
	}()
	assert.Equal(t, 1, s.held())
	unlock()
	<-done
	assert.Equal(t, 0, s.held())
}

func TestLoadFixtures(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nodes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"a"},{"name":"b","boot_count":4}]`), 0o600))

	s := NewMemoryStore()
	require.NoError(t, s.SaveNode(ctx, &models.Node{Name: "a", BootCount: 9}))

	added, err := LoadFixtures(ctx, s, path)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	a, err := s.FindNode(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 9, a.BootCount)

	b, err := s.FindNode(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 4, b.BootCount)
	assert.EqualValues(t, 1, b.Version)
}

func TestMemoryStoreClosed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())
	_, err := s.FindNode(context.Background(), "a")
	assert.ErrorIs(t, err, ErrClosed)
}
