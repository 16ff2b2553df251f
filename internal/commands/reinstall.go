package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/devghori1264/aerophoenix/razord/internal/lifecycle"
	"github.com/devghori1264/aerophoenix/razord/internal/storage"
	"github.com/devghori1264/aerophoenix/razord/internal/validate"
)

const (
	ReinstallNodeName = "reinstall-node"
	// NodeReinstalledEvent is published after every accepted reinstall.
	NodeReinstalledEvent = "node.reinstalled"
)

// ReinstallNode clears a node's installation markers and, unless
// same_policy is set, its policy binding.
type ReinstallNode struct {
	store storage.Store
	now   func() time.Time
}

func NewReinstallNode(store storage.Store) *ReinstallNode {
	return &ReinstallNode{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (c *ReinstallNode) Name() string { return ReinstallNodeName }

func (c *ReinstallNode) Schema() validate.Schema {
	return validate.Schema{
		{Name: "name", Kind: validate.KindString, Required: true},
		{Name: "same_policy", Kind: validate.KindBoolean, Default: false},
	}
}

func (c *ReinstallNode) Execute(ctx context.Context, p validate.Params) (Result, error) {
	name := p.String("name")
	samePolicy := p.Bool("same_policy")

	unlock := c.store.Lock(name)
	defer unlock()

	node, err := c.store.FindNode(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{}, &NotFoundError{Param: "name", Value: name}
		}
		return Result{}, infra("find node", err)
	}

	next, outcome := lifecycle.Reinstall(*node, samePolicy)
	if outcome.Mutated() {
		next.Version++
		next.UpdatedAt = c.now()
		if err := c.store.SaveNode(ctx, &next); err != nil {
			return Result{}, infra("save node", err)
		}
	}

	return Result{
		Status:  http.StatusAccepted,
		Message: outcome.Message(name),
		Node:    name,
		Outcome: outcome.String(),
		Event:   NodeReinstalledEvent,
	}, nil
}
