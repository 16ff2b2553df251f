// Package lifecycle holds the pure node transitions. Nothing here performs
// I/O; callers load a node, apply a transition and persist the result.
package lifecycle

import (
	"fmt"

	"github.com/devghori1264/aerophoenix/razord/internal/models"
)

// Outcome classifies a successful reinstall. There is no failure outcome:
// every node state has a defined transition.
type Outcome int

const (
	// OutcomeUnbound means the policy binding was dropped.
	OutcomeUnbound Outcome = iota + 1
	// OutcomeInstalledCleared means only the installation markers were cleared.
	OutcomeInstalledCleared
	// OutcomeNoop means the node was neither bound nor installed.
	OutcomeNoop
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnbound:
		return "unbound"
	case OutcomeInstalledCleared:
		return "installed_cleared"
	case OutcomeNoop:
		return "noop"
	default:
		return "unknown"
	}
}

// Mutated reports whether the transition changed the node.
func (o Outcome) Mutated() bool { return o != OutcomeNoop }

// Message is the result sentence reported to the caller.
func (o Outcome) Message(name string) string {
	switch o {
	case OutcomeUnbound:
		return fmt.Sprintf("%s: node unbound and will be reinstalled", name)
	case OutcomeInstalledCleared:
		return fmt.Sprintf("installed flag cleared on node %s; it will be reinstalled", name)
	default:
		return fmt.Sprintf("node %s neither bound nor installed", name)
	}
}

// Reinstall computes the next state of node. samePolicy keeps the policy of a
// bound and installed node; a bound node that never installed is always
// unbound. BootCount is never touched.
func Reinstall(node models.Node, samePolicy bool) (models.Node, Outcome) {
	next := node.Clone()

	switch {
	case next.IsBound() && next.IsInstalled():
		clearInstalled(&next)
		if samePolicy {
			return next, OutcomeInstalledCleared
		}
		next.Policy = nil
		return next, OutcomeUnbound

	case next.IsBound():
		next.Policy = nil
		return next, OutcomeUnbound

	case next.IsInstalled():
		clearInstalled(&next)
		return next, OutcomeInstalledCleared

	default:
		return next, OutcomeNoop
	}
}

func clearInstalled(n *models.Node) {
	n.Installed = ""
	n.InstalledAt = nil
}
