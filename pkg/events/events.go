// Package events publishes domain events on NATS after their database
// transaction commits. Subjects are <root>.<entity>.<event>.<id> and the
// payload is the JSON-encoded Envelope.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/equidadeplus/equidade_backend/pkg/constants"
	"github.com/equidadeplus/equidade_backend/pkg/reqctx"
)

// Entities.
const (
	EntityEvolution   = "evolution"
	EntityAppointment = "appointment"
	EntityProfile     = "profile"
	EntityUnit        = "unit"
)

// Events.
const (
	EventCreated           = "created"
	EventSubmitted         = "submitted"
	EventFinalized         = "finalized"
	EventApproved          = "approved"
	EventRevisionRequested = "revision_requested"
	EventAddendum          = "addendum"
	EventStatusChanged     = "status_changed"
	EventProvisioned       = "provisioned"
	EventMembersChanged    = "members_changed"
)

// Envelope is the wire payload of every event.
type Envelope struct {
	ID         uuid.UUID       `json:"id"`
	Entity     string          `json:"entity"`
	Event      string          `json:"event"`
	ActorID    uuid.UUID       `json:"actor_id"`
	UnitID     *uuid.UUID      `json:"unit_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	TraceID    string          `json:"trace_id,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Publisher is what services depend on. Publishing is best effort: callers
// log a failure and carry on.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// Subject builds the NATS subject of an event.
func Subject(entity, event string, id uuid.UUID) string {
	return strings.Join([]string{constants.SubjectRoot, entity, event, id.String()}, ".")
}

// Wildcard matches every id of one entity event.
func Wildcard(entity, event string) string {
	return strings.Join([]string{constants.SubjectRoot, entity, event, "*"}, ".")
}

// New fills an Envelope, encoding data when non-nil.
func New(ctx context.Context, entity, event string, id, actorID uuid.UUID, unitID *uuid.UUID, data any) (Envelope, error) {
	env := Envelope{
		ID:         id,
		Entity:     entity,
		Event:      event,
		ActorID:    actorID,
		UnitID:     unitID,
		OccurredAt: time.Now().UTC(),
		TraceID:    reqctx.TraceIDFromContext(ctx),
	}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return Envelope{}, fmt.Errorf("encode event data: %w", err)
		}
		env.Data = b
	}
	return env, nil
}

// Decode parses a message payload.
func Decode(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event: %w", err)
	}
	return env, nil
}

// NATSPublisher publishes on a core NATS connection.
type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) Publish(_ context.Context, env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.nc.Publish(Subject(env.Entity, env.Event, env.ID), b); err != nil {
		return fmt.Errorf("publish %s.%s: %w", env.Entity, env.Event, err)
	}
	return nil
}

// Nop discards every event. Used when NATS is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, Envelope) error { return nil }

// Recorder keeps published envelopes in memory for tests.
type Recorder struct {
	Events []Envelope
	Err    error
}

func (r *Recorder) Publish(_ context.Context, env Envelope) error {
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, env)
	return nil
}
