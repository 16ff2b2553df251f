package models

import (
	"errors"
	"time"
)

// Phase is the derived lifecycle position of a node.
type Phase string

const (
	PhaseUnbound   Phase = "unbound"
	PhaseBound     Phase = "bound"
	PhaseInstalled Phase = "installed"
	// PhaseOrphaned is an installed node that lost its policy binding.
	PhaseOrphaned Phase = "orphaned"
)

var ErrInstalledAtMismatch = errors.New("installed and installed_at must be set together")

// Node is the core domain object: a provisionable machine tracked by name.
// Shared between the server and storage layers.
type Node struct {
	Name        string            `json:"name"`
	Policy      *Policy           `json:"policy,omitempty"`
	Installed   string            `json:"installed,omitempty"`
	InstalledAt *time.Time        `json:"installed_at,omitempty"`
	BootCount   int               `json:"boot_count"`
	Version     int64             `json:"version"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Facts       map[string]string `json:"facts,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (n *Node) IsBound() bool     { return n.Policy != nil }
func (n *Node) IsInstalled() bool { return n.Installed != "" }

func (n *Node) Phase() Phase {
	switch {
	case n.IsBound() && n.IsInstalled():
		return PhaseInstalled
	case n.IsBound():
		return PhaseBound
	case n.IsInstalled():
		return PhaseOrphaned
	default:
		return PhaseUnbound
	}
}

// Validate checks the structural invariants of a node before it is persisted.
func (n *Node) Validate() error {
	if n.Name == "" {
		return errors.New("node name required")
	}
	if n.IsInstalled() != (n.InstalledAt != nil) {
		return ErrInstalledAtMismatch
	}
	if n.BootCount < 0 {
		return errors.New("boot_count must be non-negative")
	}
	return nil
}

// Clone returns a deep copy so callers can compute transitions without
// touching cached or stored values.
func (n Node) Clone() Node {
	out := n
	if n.Policy != nil {
		p := *n.Policy
		out.Policy = &p
	}
	if n.InstalledAt != nil {
		t := *n.InstalledAt
		out.InstalledAt = &t
	}
	out.Facts = cloneMap(n.Facts)
	out.Metadata = cloneMap(n.Metadata)
	return out
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
