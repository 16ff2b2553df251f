package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhase(t *testing.T) {
	at := time.Now()
	p := &Policy{Name: "p"}
	assert.Equal(t, PhaseUnbound, (&Node{}).Phase())
	assert.Equal(t, PhaseBound, (&Node{Policy: p}).Phase())
	assert.Equal(t, PhaseInstalled, (&Node{Policy: p, Installed: "x", InstalledAt: &at}).Phase())
	assert.Equal(t, PhaseOrphaned, (&Node{Installed: "x", InstalledAt: &at}).Phase())
}

func TestValidate(t *testing.T) {
	at := time.Now()
	assert.NoError(t, (&Node{Name: "n"}).Validate())
	assert.Error(t, (&Node{}).Validate())
	assert.ErrorIs(t, (&Node{Name: "n", Installed: "x"}).Validate(), ErrInstalledAtMismatch)
	assert.ErrorIs(t, (&Node{Name: "n", InstalledAt: &at}).Validate(), ErrInstalledAtMismatch)
	assert.Error(t, (&Node{Name: "n", BootCount: -1}).Validate())
}

func TestCloneIsDeep(t *testing.T) {
	at := time.Now()
	n := Node{Name: "n", Policy: &Policy{Name: "p"}, InstalledAt: &at, Installed: "x", Facts: map[string]string{"a": "1"}}
	c := n.Clone()
	c.Policy.Name = "q"
	c.Facts["a"] = "2"
	assert.Equal(t, "p", n.Policy.Name)
	assert.Equal(t, "1", n.Facts["a"])
}
