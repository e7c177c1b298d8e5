// pkg/authorize/casbin.go
package authorize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/google/uuid"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// modelText is the unit-scoped RBAC model: a user holds a role per unit
// domain and roles carry (resource, action) permissions.
const modelText = `
[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && r.obj == p.obj && r.act == p.act
`

// IAuthorization is the only thing services/middleware should depend on.
type IAuthorization interface {
	// Enforce answers: "may this actor perform action on resource in the
	// actor's selected unit?"
	Enforce(ctx context.Context, actor Actor, object Resource, action Action) (bool, error)

	// MustEnforce is convenience for services: return ErrForbidden if not allowed.
	MustEnforce(ctx context.Context, actor Actor, object Resource, action Action) error

	// Reload rebuilds the grouping rows from the grant source.
	Reload(ctx context.Context) error
}

// Authorization combines the static matrix with casbin unit membership
// checks. The enforcer is rebuilt on Reload and swapped atomically, so
// readers never observe a half-loaded policy.
type Authorization struct {
	enforcer atomic.Pointer[casbin.SyncedEnforcer]
	source   GrantSource
	logger   *slog.Logger
}

// NewAuthorization builds the enforcer and loads the initial grants.
func NewAuthorization(ctx context.Context, source GrantSource, logger *slog.Logger) (*Authorization, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: grant source is nil", ErrInvalidArgs)
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Authorization{source: source, logger: logger}
	if err := a.Reload(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Authorization) Reload(ctx context.Context) error {
	grants, err := a.source.Grants(ctx)
	if err != nil {
		policyLoadHealthy.Store(false)
		return fmt.Errorf("load grants: %w", err)
	}

	e, err := newEnforcer(groupingRules(grants, a.logger))
	if err != nil {
		policyLoadHealthy.Store(false)
		return err
	}

	a.enforcer.Store(e)
	policyLoadHealthy.Store(true)
	a.logger.Debug("authorization policy loaded", "grants", len(grants))
	return nil
}

func newEnforcer(grouping [][]string) (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	e.EnableLog(false)

	if _, err := e.AddPolicies(SeedPolicies()); err != nil {
		return nil, fmt.Errorf("seed policies: %w", err)
	}
	if len(grouping) > 0 {
		if _, err := e.AddGroupingPolicies(grouping); err != nil {
			return nil, fmt.Errorf("load grouping policies: %w", err)
		}
	}
	return e, nil
}

func (a *Authorization) Enforce(ctx context.Context, actor Actor, object Resource, action Action) (bool, error) {
	_ = ctx // reserved for tracing/logging later

	if actor.UserID == uuid.Nil || object == "" || action == "" {
		return false, fmt.Errorf("%w: empty actor, resource or action", ErrInvalidArgs)
	}

	// The matrix is authoritative; casbin only narrows it to unit members.
	if !Allows(actor.Role, object, action) {
		return false, nil
	}
	if !actor.HasUnit() || actor.Role.IsAdmin() {
		return true, nil
	}

	e := a.enforcer.Load()
	if e == nil {
		return false, fmt.Errorf("%w: policy not loaded", ErrInvalidArgs)
	}
	return e.Enforce(string(actor.Subject()), string(UnitDomain(actor.Unit())), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, actor Actor, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, actor, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

