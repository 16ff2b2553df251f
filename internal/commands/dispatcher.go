package commands

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/devghori1264/aerophoenix/razord/internal/models"
	"github.com/devghori1264/aerophoenix/razord/internal/storage"
)

// EventSubjectPrefix prefixes the subject of every command event.
const EventSubjectPrefix = "razor.commands."

// Publisher receives an event for every applied command.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
}

// Dispatcher runs commands: validation, execution, audit record and event.
// It keeps no state between calls; all mutable state lives in the store.
type Dispatcher struct {
	registry  *Registry
	store     storage.Store
	publisher Publisher
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*Dispatcher)

func WithLogger(l *zap.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

func WithPublisher(p Publisher) Option { return func(d *Dispatcher) { d.publisher = p } }

func WithTracer(t trace.Tracer) Option { return func(d *Dispatcher) { d.tracer = t } }

func WithClock(now func() time.Time) Option { return func(d *Dispatcher) { d.now = now } }

func NewDispatcher(reg *Registry, store storage.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		store:    store,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer("razord/commands"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch executes the named command against payload. Validation and
// lookup failures never reach the command's state transition.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, payload map[string]any) (Result, error) {
	cmd, ok := d.registry.Lookup(name)
	if !ok {
		return Result{}, ErrUnknownCommand
	}

	id := uuid.NewString()
	ctx, span := d.tracer.Start(ctx, "command."+name, trace.WithAttributes(
		attribute.String("command.name", name),
		attribute.String("command.id", id),
	))
	defer span.End()

	log := d.logger.With(zap.String("command", name), zap.String("command_id", id))

	params, err := cmd.Schema().Validate(payload)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Info("command rejected", zap.Error(err))
		return Result{}, err
	}

	submitted := d.now()
	res, err := cmd.Execute(ctx, params)

	rec := &models.CommandRecord{
		ID:          id,
		Command:     name,
		Params:      params,
		SubmittedAt: submitted,
		FinishedAt:  d.now(),
	}
	if err != nil {
		rec.Status = models.CommandFailed
		rec.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if IsRetryable(err) {
			log.Error("command failed", zap.Error(err))
		} else {
			log.Info("command failed", zap.Error(err))
		}
	} else {
		rec.Status = models.CommandFinished
		rec.Result = res.Message
		span.SetAttributes(attribute.String("command.outcome", res.Outcome))
		log.Info("command finished",
			zap.String("node", res.Node),
			zap.String("outcome", res.Outcome))
	}

	if serr := d.store.SaveCommand(ctx, rec); serr != nil {
		log.Warn("record command", zap.Error(serr))
	}
	if err != nil {
		return Result{}, err
	}

	res.ID = id
	res.Command = name
	d.publish(ctx, log, res)
	return res, nil
}

func (d *Dispatcher) publish(ctx context.Context, log *zap.Logger, res Result) {
	if d.publisher == nil || res.Event == "" {
		return
	}
	ev := map[string]interface{}{
		"event":   res.Event,
		"command": res.Command,
		"id":      res.ID,
		"node":    res.Node,
		"outcome": res.Outcome,
		"time":    d.now().Unix(),
	}
	payload, _ := json.Marshal(ev)
	if err := d.publisher.Publish(ctx, EventSubjectPrefix+res.Command, payload); err != nil {
		log.Warn("publish failed", zap.Error(err))
	}
}
