package commands

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/devghori1264/aerophoenix/razord/internal/validate"
)

// Command is one named operation of the command API.
type Command interface {
	Name() string
	Schema() validate.Schema
	Execute(ctx context.Context, p validate.Params) (Result, error)
}

// Result is a successful command outcome.
type Result struct {
	ID      string `json:"command"`
	Command string `json:"-"`
	Status  int    `json:"-"`
	Message string `json:"result"`
	Node    string `json:"-"`
	Outcome string `json:"-"`
	// Event names the event published once the command is applied.
	Event   string `json:"-"`
}

// Registry maps command names to implementations.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry(cmds ...Command) *Registry {
	r := &Registry{commands: make(map[string]Command)}
	for _, c := range cmds {
		r.MustRegister(c)
	}
	return r
}

func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[c.Name()]; ok {
		return fmt.Errorf("command %q already registered", c.Name())
	}
	r.commands[c.Name()] = c
	return nil
}

func (r *Registry) MustRegister(c Command) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.commands))
	for name := range r.commands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
