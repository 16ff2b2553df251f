// Package policy resolves the task a node's policy points at and picks the
// boot template the node should receive next.
package policy

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/devghori1264/aerophoenix/razord/internal/models"
)

const (
	// MicrokernelTask is served to nodes without a policy.
	MicrokernelTask = "microkernel"
	// LocalBootTemplate hands the node over to its local disk.
	LocalBootTemplate = "boot_local"

	defaultSeqKey = "default"
)

var ErrUnknownTask = errors.New("unknown task")

// Resolver maps a policy binding to its task.
type Resolver interface {
	TaskFor(p *models.Policy) (models.Task, error)
}

// Catalog is an in-memory task registry.
type Catalog struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
}

// NewCatalog returns a catalog seeded with the microkernel task.
func NewCatalog(tasks ...models.Task) *Catalog {
	c := &Catalog{tasks: make(map[string]models.Task)}
	c.Add(models.Task{
		Name:        MicrokernelTask,
		Description: "discovery kernel for unbound nodes",
		BootSeq:     map[string]string{defaultSeqKey: "boot"},
	})
	for _, t := range tasks {
		c.Add(t)
	}
	return c
}

func (c *Catalog) Add(t models.Task) {
	c.mu.Lock()
	c.tasks[t.Name] = t
	c.mu.Unlock()
}

// TaskFor returns the microkernel task for a nil policy.
func (c *Catalog) TaskFor(p *models.Policy) (models.Task, error) {
	name := MicrokernelTask
	if p != nil {
		name = p.TaskName
	}
	c.mu.RLock()
	t, ok := c.tasks[name]
	c.mu.RUnlock()
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return t, nil
}

// BootTemplate picks the template for the node's next boot. Installed nodes
// boot locally; otherwise the boot count selects an entry of the sequence.
func BootTemplate(t models.Task, n *models.Node) string {
	if n.IsInstalled() {
		return LocalBootTemplate
	}
	if tpl, ok := t.BootSeq[strconv.Itoa(n.BootCount)]; ok {
		return tpl
	}
	if tpl, ok := t.BootSeq[defaultSeqKey]; ok {
		return tpl
	}
	return LocalBootTemplate
}
