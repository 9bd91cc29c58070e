package ratelimit

import "fmt"

// Scope names the group of endpoints a limit applies to
type Scope string

const (
	ScopeResolve  Scope = "resolve"  // relationship lookups
	ScopeMutation Scope = "mutation" // graph mutation hooks and recomputes
)

// Policy defines how many requests a client may make per window
type Policy struct {
	Scope         Scope
	Limit         int64 // Requests allowed per window
	WindowSeconds int   // Time window in seconds
}

// DefaultPolicies are used when a scope has no configured limit
var DefaultPolicies = map[Scope]Policy{
	ScopeResolve: {
		Scope:         ScopeResolve,
		Limit:         120,
		WindowSeconds: 60,
	},
	ScopeMutation: {
		Scope:         ScopeMutation,
		Limit:         30,
		WindowSeconds: 60,
	},
}

// PolicyFor returns the default policy for scope, falling back to the
// most restrictive one
func PolicyFor(scope Scope) Policy {
	if p, ok := DefaultPolicies[scope]; ok {
		return p
	}
	p := DefaultPolicies[ScopeMutation]
	p.Scope = scope
	return p
}

// PerMinute returns a one-minute policy for scope
func PerMinute(scope Scope, limit int64) Policy {
	return Policy{Scope: scope, Limit: limit, WindowSeconds: 60}
}

// Describe returns a human-readable window, e.g. "60 seconds"
func (p Policy) Describe() string {
	return fmt.Sprintf("%d seconds", p.WindowSeconds)
}
