package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/equidadeplus/equidade_backend/config"
	"github.com/equidadeplus/equidade_backend/internal/repo"
	"github.com/equidadeplus/equidade_backend/internal/service/evolution"
	"github.com/equidadeplus/equidade_backend/internal/service/profile"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/email"
	"github.com/equidadeplus/equidade_backend/pkg/events"
	"github.com/equidadeplus/equidade_backend/pkg/sms"
)

const (
	workerQueue   = "equidade-workers"
	workerTimeout = 30 * time.Second
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc   fx.Lifecycle
	Cfg  *config.Config
	NC   *nats.Conn
	DB   *repo.Client
	Mail email.Sender
	SMS  *sms.Client
}

// Texter is the part of the SMS client the workers use.
type Texter interface {
	IsEnabled() bool
	SendAppointmentConfirmation(ctx context.Context, phone, patientName string, startsAt time.Time) error
}

type appointmentReader interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Appointment, error)
}

type patientReader interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Patient, error)
	ListGuardians(ctx context.Context, patientID uuid.UUID) ([]*repo.Guardian, error)
}

type profileReader interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Profile, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]*repo.Profile, error)
}

type unitReader interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Unit, error)
}

// Notifier turns domain events into outbound SMS and e-mail.
type Notifier struct {
	appointments appointmentReader
	patients     patientReader
	profiles     profileReader
	units        unitReader
	texter       Texter
	mail         email.Sender
	baseURL      string
}

func NewNotifier(db *repo.Client, texter Texter, mail email.Sender, baseURL string) *Notifier {
	return &Notifier{
		appointments: db.Appointment,
		patients:     db.Patient,
		profiles:     db.Profile,
		units:        db.Unit,
		texter:       texter,
		mail:         mail,
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil || !p.Cfg.Workers.Enabled {
		slog.Info("workers: disabled")
		return
	}

	n := NewNotifier(p.DB, p.SMS, p.Mail, "https://"+p.Cfg.Server.Domain)
	handlers := map[string]func(context.Context, events.Envelope) error{
		events.Wildcard(events.EntityAppointment, events.EventCreated):         n.AppointmentCreated,
		events.Wildcard(events.EntityEvolution, events.EventRevisionRequested): n.RevisionRequested,
		events.Wildcard(events.EntityProfile, events.EventProvisioned):        n.Provisioned,
	}

	var subs []*nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for subject, h := range handlers {
				sub, err := p.NC.QueueSubscribe(subject, workerQueue, dispatch(subject, h))
				if err != nil {
					return fmt.Errorf("subscribe %s: %w", subject, err)
				}
				subs = append(subs, sub)
			}
			slog.Info("workers: started", "subjects", len(subs))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			for _, sub := range subs {
				if err := sub.Unsubscribe(); err != nil {
					slog.Warn("workers: unsubscribe failed", "subject", sub.Subject, "error", err)
				}
			}
			return nil
		},
	})
}

func dispatch(subject string, h func(context.Context, events.Envelope) error) nats.MsgHandler {
	return func(msg *nats.Msg) {
		env, err := events.Decode(msg.Data)
		if err != nil {
			slog.Warn("workers: bad payload", "subject", msg.Subject, "error", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), workerTimeout)
		defer cancel()
		if err := h(ctx, env); err != nil {
			slog.WarnContext(ctx, "workers: handler failed",
				"subject", subject,
				"id", env.ID,
				"trace_id", env.TraceID,
				"error", err,
			)
		}
	}
}

// AppointmentCreated texts every guardian of the patient who has a phone.
func (n *Notifier) AppointmentCreated(ctx context.Context, env events.Envelope) error {
	if n.texter == nil || !n.texter.IsEnabled() {
		return nil
	}
	a, err := n.appointments.Get(ctx, env.ID)
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}
	p, err := n.patients.Get(ctx, a.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}
	links, err := n.patients.ListGuardians(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("load guardians: %w", err)
	}
	if len(links) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(links))
	for _, g := range links {
		ids = append(ids, g.GuardianID)
	}
	guardians, err := n.profiles.GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("load guardian profiles: %w", err)
	}

	var errs []error
	for _, g := range guardians {
		if g.Phone == "" {
			continue
		}
		if err := n.texter.SendAppointmentConfirmation(ctx, g.Phone, p.FullName, a.StartsAt); err != nil {
			errs = append(errs, fmt.Errorf("guardian %s: %w", g.ID, err))
		}
	}
	return errors.Join(errs...)
}

// RevisionRequested e-mails the author with the supervisor's feedback.
func (n *Notifier) RevisionRequested(ctx context.Context, env events.Envelope) error {
	var data evolution.EventData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("decode evolution event: %w", err)
	}
	author, err := n.profiles.Get(ctx, data.AuthorID)
	if err != nil {
		return fmt.Errorf("load author: %w", err)
	}
	if author.Email == "" {
		return nil
	}
	p, err := n.patients.Get(ctx, data.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}
	msg, err := email.BuildRevisionRequestedEmail(author.Email, email.EvolutionData{
		AuthorName:  author.DisplayName,
		PatientName: p.FullName,
		Feedback:    data.Feedback,
		Link:        n.baseURL + "/evolucoes/" + env.ID.String(),
	})
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

// Provisioned sends the welcome e-mail of a new account.
func (n *Notifier) Provisioned(ctx context.Context, env events.Envelope) error {
	var data profile.EventData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("decode profile event: %w", err)
	}
	if data.Email == "" {
		return nil
	}
	var unitName string
	if data.HomeUnitID != nil {
		u, err := n.units.Get(ctx, *data.HomeUnitID)
		if err != nil && !repo.IsNotFound(err) {
			return fmt.Errorf("load unit: %w", err)
		}
		if u != nil {
			unitName = u.Name
		}
	}
	roleName := authorize.RoleDisplayNamesPT[data.Role]
	if roleName == "" {
		roleName = data.Role.String()
	}
	msg, err := email.BuildWelcomeEmail(email.WelcomeData{
		DisplayName: data.DisplayName,
		Email:       data.Email,
		RoleName:    roleName,
		UnitName:    unitName,
		LoginURL:    n.baseURL,
	})
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *Notifier) send(ctx context.Context, msg email.Message) error {
	if n.mail == nil {
		return nil
	}
	err := n.mail.Send(ctx, msg)
	var disabled email.ErrDisabled
	if errors.As(err, &disabled) {
		return nil
	}
	return err
}
