package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/devghori1264/aerophoenix/razord/internal/commands"
	"github.com/devghori1264/aerophoenix/razord/internal/models"
	"github.com/devghori1264/aerophoenix/razord/internal/policy"
	"github.com/devghori1264/aerophoenix/razord/internal/storage"
)

func newTestServer(t *testing.T) (*Server, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	d := commands.NewDispatcher(commands.NewRegistry(commands.NewReinstallNode(store)), store)
	catalog := policy.NewCatalog(models.Task{
		Name:    "centos",
		BootSeq: map[string]string{"1": "boot_first", "default": "boot_again"},
	})
	return New(d, store, catalog, nil), store
}

func TestSamePolicyReinstallBootsFirstTemplate(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()
	at := time.Now().UTC()
	require.NoError(t, store.SaveNode(ctx, &models.Node{
		Name:        "node1",
		Policy:      &models.Policy{Name: "p", TaskName: "centos", Enabled: true},
		Installed:   "some_thing",
		InstalledAt: &at,
		BootCount:   1,
	}))

	before, err := s.GetNode(ctx, "node1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseInstalled, before.Phase)
	assert.Equal(t, policy.LocalBootTemplate, before.BootTemplate)

	_, err = s.Execute(ctx, commands.ReinstallNodeName, map[string]any{"name": "node1", "same_policy": true})
	require.NoError(t, err)

	after, err := s.GetNode(ctx, "node1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseBound, after.Phase)
	assert.Equal(t, "centos", after.Task)
	assert.Equal(t, "boot_first", after.BootTemplate)
	assert.Equal(t, 1, after.BootCount)
}

func TestGetNodeMissing(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.GetNode(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestListNodesUnboundUsesMicrokernel(t *testing.T) {
	s, store := newTestServer(t)
	require.NoError(t, store.SaveNode(context.Background(), &models.Node{Name: "fresh"}))
	nodes, err := s.ListNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, policy.MicrokernelTask, nodes[0].Task)
	assert.Equal(t, models.PhaseUnbound, nodes[0].Phase)
}

func TestHealthService(t *testing.T) {
	s, _ := newTestServer(t)
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	s.RegisterGRPC(gs)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client := healthpb.NewHealthClient(conn)
	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	s.Shutdown()
	resp, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}
