package authorize

import (
	"context"
	"log/slog"
	"sync/atomic"

	psqlwatcher "github.com/IguteChung/casbin-psql-watcher"
	"github.com/casbin/casbin/v2/persist"
)

// DefaultChannel is the Postgres channel membership changes are announced on.
const DefaultChannel = "equidade_policy_update"

// policyLoadHealthy tracks the health state of policy loading.
// When a reload fails, this is set to false to trigger health check failures.
var policyLoadHealthy atomic.Bool

func init() {
	policyLoadHealthy.Store(true)
}

// IsPolicyHealthy returns true if the policy is in a healthy state.
// Returns false if the last reload attempt failed.
func IsPolicyHealthy() bool {
	return policyLoadHealthy.Load()
}

// CleanupFunc is a function that cleans up resources.
type CleanupFunc func(ctx context.Context)

// Notifier announces that grants changed so every instance reloads.
type Notifier interface {
	Notify(ctx context.Context) error
}

// NopNotifier is used when policy sync is disabled.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context) error { return nil }

// PolicyWatcher reloads the local enforcer when a peer announces a change,
// and announces local changes to peers.
type PolicyWatcher struct {
	w      persist.Watcher
	logger *slog.Logger
}

// NewPolicyWatcher listens on channel and calls auth.Reload on every
// notification. The enforcer itself is never bound to the watcher: grants
// are not written through casbin, so a reload loop cannot start.
func NewPolicyWatcher(ctx context.Context, dsn, channel string, auth IAuthorization, logger *slog.Logger) (*PolicyWatcher, CleanupFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if channel == "" {
		channel = DefaultChannel
	}

	w, err := psqlwatcher.NewWatcherWithConnString(ctx, dsn, psqlwatcher.Option{
		Channel: channel,
	})
	if err != nil {
		return nil, nil, err
	}

	err = w.SetUpdateCallback(func(msg string) {
		logger.Debug("policy update received", "message", msg)
		if err := auth.Reload(context.Background()); err != nil {
			logger.Error("failed to reload policy after watcher notification", "error", err)
		}
	})
	if err != nil {
		w.Close()
		return nil, nil, err
	}

	cleanup := func(ctx context.Context) {
		logger.Info("closing policy watcher")
		w.Close()
	}

	return &PolicyWatcher{w: w, logger: logger}, cleanup, nil
}

func (p *PolicyWatcher) Notify(ctx context.Context) error {
	if err := p.w.Update(); err != nil {
		p.logger.WarnContext(ctx, "policy update broadcast failed", "error", err)
		return err
	}
	return nil
}

// PolicySync reloads the local enforcer after a membership write and tells
// peers to do the same.
type PolicySync struct {
	auth     IAuthorization
	notifier Notifier
	logger   *slog.Logger
}

func NewPolicySync(auth IAuthorization, notifier Notifier, logger *slog.Logger) *PolicySync {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicySync{auth: auth, notifier: notifier, logger: logger}
}

// MembershipsChanged never fails the caller: the write already committed,
// and a failed reload flips IsPolicyHealthy so the readiness check reports it.
func (p *PolicySync) MembershipsChanged(ctx context.Context) {
	if p == nil || p.auth == nil {
		return
	}
	if err := p.auth.Reload(ctx); err != nil {
		p.logger.ErrorContext(ctx, "reload policy after membership change", "error", err)
	}
	if err := p.notifier.Notify(ctx); err != nil {
		p.logger.WarnContext(ctx, "notify peers of membership change", "error", err)
	}
}
