package authorize

import (
	"context"
	"log/slog"
)

// Grant binds a user to a role inside a unit. Grants are read from the
// unit memberships and become casbin grouping rows.
type Grant struct {
	Subject GroupSubject
	Role    Role
	Domain  Domain
}

// GrantSource loads every grant. The persistence layer implements it.
type GrantSource interface {
	Grants(ctx context.Context) ([]Grant, error)
}

// GrantSourceFunc adapts a plain function to GrantSource.
type GrantSourceFunc func(ctx context.Context) ([]Grant, error)

func (f GrantSourceFunc) Grants(ctx context.Context) ([]Grant, error) { return f(ctx) }

// SeedPolicies derives the casbin permission rows (p, role, resource, action)
// from the static matrix so the two can never disagree.
func SeedPolicies() [][]string {
	var rules [][]string
	for _, role := range Roles {
		for _, res := range Resources {
			for _, act := range Actions {
				if Allows(role, res, act) {
					rules = append(rules, []string{string(role), string(res), string(act)})
				}
			}
		}
	}
	return rules
}

// groupingRules converts grants into casbin rows, skipping malformed ones.
func groupingRules(grants []Grant, logger *slog.Logger) [][]string {
	rules := make([][]string, 0, len(grants))
	seen := make(map[[3]string]struct{}, len(grants))
	for _, g := range grants {
		if g.Subject == "" || !g.Role.IsValid() || !IsValidDomain(g.Domain) {
			logger.Warn("skipping invalid grant", "subject", g.Subject, "role", g.Role, "domain", g.Domain)
			continue
		}
		key := [3]string{string(g.Subject), string(g.Role), string(g.Domain)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rules = append(rules, key[:])
	}
	return rules
}
