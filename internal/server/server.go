package server

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/devghori1264/aerophoenix/razord/internal/commands"
	"github.com/devghori1264/aerophoenix/razord/internal/models"
	"github.com/devghori1264/aerophoenix/razord/internal/policy"
	"github.com/devghori1264/aerophoenix/razord/internal/storage"
)

// ServiceName is reported by the gRPC health service.
const ServiceName = "razord.v1.Nodes"

var ErrNodeNotFound = errors.New("node not found")

// NodeView is the read model of a node served by the collections API.
type NodeView struct {
	*models.Node
	Phase        models.Phase `json:"phase"`
	Task         string       `json:"task,omitempty"`
	BootTemplate string       `json:"boot_template,omitempty"`
}

// Server is the service façade over the dispatcher, store and task resolver.
type Server struct {
	dispatcher *commands.Dispatcher
	store      storage.Store
	resolver   policy.Resolver
	health     *health.Server
	logger     *zap.Logger
}

// New creates a new server instance.
func New(d *commands.Dispatcher, store storage.Store, resolver policy.Resolver, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		dispatcher: d,
		store:      store,
		resolver:   resolver,
		health:     health.NewServer(),
		logger:     logger,
	}
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// RegisterGRPC registers the gRPC health service.
func (s *Server) RegisterGRPC(gs *grpc.Server) {
	healthpb.RegisterHealthServer(gs, s.health)
}

// Shutdown flips health to NOT_SERVING so balancers drain the instance.
func (s *Server) Shutdown() {
	s.health.Shutdown()
}

func (s *Server) Execute(ctx context.Context, name string, payload map[string]any) (commands.Result, error) {
	return s.dispatcher.Dispatch(ctx, name, payload)
}

func (s *Server) CommandNames() []string {
	return s.dispatcher.Registry().Names()
}

func (s *Server) Commands(ctx context.Context) ([]*models.CommandRecord, error) {
	return s.store.ListCommands(ctx)
}

// GetNode fetches a node by name with its derived task and boot template.
func (s *Server) GetNode(ctx context.Context, name string) (*NodeView, error) {
	n, err := s.store.FindNode(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, fmt.Errorf("find node: %w", err)
	}
	return s.view(n), nil
}

func (s *Server) ListNodes(ctx context.Context) ([]*NodeView, error) {
	nodes, err := s.store.ListNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	out := make([]*NodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, s.view(n))
	}
	return out, nil
}

func (s *Server) view(n *models.Node) *NodeView {
	v := &NodeView{Node: n, Phase: n.Phase()}
	task, err := s.resolver.TaskFor(n.Policy)
	if err != nil {
		s.logger.Warn("resolve task", zap.String("node", n.Name), zap.Error(err))
		return v
	}
	v.Task = task.Name
	v.BootTemplate = policy.BootTemplate(task, n)
	return v
}
