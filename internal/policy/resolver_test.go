package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devghori1264/aerophoenix/razord/internal/models"
)

var centos = models.Task{
	Name:    "centos",
	BootSeq: map[string]string{"1": "boot_first", "default": "boot_again"},
}

func TestTaskForUnboundNode(t *testing.T) {
	task, err := NewCatalog().TaskFor(nil)
	require.NoError(t, err)
	assert.Equal(t, MicrokernelTask, task.Name)
}

func TestTaskForUnknown(t *testing.T) {
	_, err := NewCatalog().TaskFor(&models.Policy{Name: "p", TaskName: "nope"})
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestBootTemplate(t *testing.T) {
	task, err := NewCatalog(centos).TaskFor(&models.Policy{Name: "p", TaskName: "centos"})
	require.NoError(t, err)

	assert.Equal(t, "boot_first", BootTemplate(task, &models.Node{BootCount: 1}))
	assert.Equal(t, "boot_again", BootTemplate(task, &models.Node{BootCount: 5}))

	at := time.Now()
	assert.Equal(t, LocalBootTemplate, BootTemplate(task, &models.Node{BootCount: 1, Installed: "x", InstalledAt: &at}))
	assert.Equal(t, LocalBootTemplate, BootTemplate(models.Task{}, &models.Node{}))
}
