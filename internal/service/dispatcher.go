package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"dbobjects/internal/declarative"
	"dbobjects/internal/domain"
)

// Dispatcher routes lifecycle events to the reconciler named by the
// event's handler property.
type Dispatcher struct {
	runner      domain.StatementRunner
	logger      *slog.Logger
	reconcilers map[declarative.ResourceKind]Reconciler
}

// NewDispatcher wires a reconciler for every supported handler.
func NewDispatcher(runner domain.StatementRunner, secrets domain.SecretResolver, logger *slog.Logger) *Dispatcher {
	logger = loggerOrDefault(logger)
	return &Dispatcher{
		runner: runner,
		logger: logger,
		reconcilers: map[declarative.ResourceKind]Reconciler{
			declarative.KindTable:           NewTableService(runner, logger),
			declarative.KindUser:            NewUserService(runner, secrets, logger),
			declarative.KindIAMUser:         NewIAMUserService(runner, logger),
			declarative.KindTablePrivileges: NewPrivilegesService(runner, logger),
		},
	}
}

// Handle plans and applies one event. A successful Delete returns a nil response.
func (d *Dispatcher) Handle(ctx context.Context, event *domain.Event) (*domain.Response, error) {
	kind, r, err := d.route(event)
	if err != nil {
		d.logger.Warn("event rejected", "error", err)
		return nil, err
	}
	return handle(ctx, r, d.runner, d.logger, kind, event)
}

// Plan builds the reconciliation for an event without running any statement.
func (d *Dispatcher) Plan(ctx context.Context, event *domain.Event) (*Reconciliation, error) {
	_, r, err := d.route(event)
	if err != nil {
		return nil, err
	}
	return r.Plan(ctx, event)
}

// Apply runs a reconciliation produced by Plan.
func (d *Dispatcher) Apply(ctx context.Context, rec *Reconciliation) (*domain.Response, error) {
	logger := d.logger.With(
		"handler", rec.Action.ResourceKind.String(),
		"physical_id", rec.Action.PhysicalID,
	)
	return apply(ctx, d.runner, logger, rec)
}

// PlanAll builds the reconciliation of every event into one plan, stopping
// at the first event that cannot be planned.
func (d *Dispatcher) PlanAll(ctx context.Context, events []*domain.Event) (*declarative.Plan, []*Reconciliation, error) {
	plan := &declarative.Plan{}
	recs := make([]*Reconciliation, 0, len(events))
	for _, e := range events {
		rec, err := d.Plan(ctx, e)
		if err != nil {
			return nil, nil, err
		}
		plan.Actions = append(plan.Actions, rec.Action)
		recs = append(recs, rec)
	}
	return plan, recs, nil
}

func (d *Dispatcher) route(event *domain.Event) (declarative.ResourceKind, Reconciler, error) {
	if event == nil {
		return 0, nil, domain.ErrValidation("event is required")
	}
	if err := event.Validate(); err != nil {
		return 0, nil, err
	}
	var props struct {
		Handler string `json:"handler"`
	}
	if len(event.ResourceProperties) == 0 {
		return 0, nil, domain.ErrValidation("resource properties are required")
	}
	if err := json.Unmarshal(event.ResourceProperties, &props); err != nil {
		return 0, nil, domain.ErrValidation("decode resource properties: %v", err)
	}
	kind, ok := declarative.ParseResourceKind(props.Handler)
	if !ok {
		return 0, nil, domain.ErrValidation("unknown handler %q", props.Handler)
	}
	return kind, d.reconcilers[kind], nil
}
