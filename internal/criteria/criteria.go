// Package criteria decides whether an achievement's unlock condition is
// satisfied by a session and the user's aggregate statistics. Kinds are
// registered under a string discriminator; dispatch is a map lookup, so new
// kinds never touch call sites. Unknown or missing kinds fail closed.
package criteria

import (
	"sync"

	"github.com/ruckwell/achievement-service/internal/domain"
	"github.com/ruckwell/achievement-service/internal/logger"
)

// Predicate reports whether an achievement's criteria are satisfied.
// Predicates are pure: no I/O, no mutation of inputs, deterministic for
// identical inputs.
type Predicate func(ach domain.Achievement, session domain.Session, stats domain.AggregateUserStats) bool

// Registry maps criteria kinds to their predicates.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Predicate
}

// NewRegistry creates an empty registry. Most callers want Default.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Predicate)}
}

// Register binds a predicate to a criteria kind, replacing any previous
// binding for that kind.
func (r *Registry) Register(kind string, p Predicate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = p
}

// Kinds returns the registered kind names.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		names = append(names, k)
	}
	return names
}

// Evaluate looks up the achievement's criteria kind and runs its predicate.
// An absent or unrecognized kind is never an error: the achievement is
// simply not satisfied.
func (r *Registry) Evaluate(ach domain.Achievement, session domain.Session, stats domain.AggregateUserStats) bool {
	kind := ach.CriteriaType()
	if kind == "" {
		logger.Debug("Achievement has no criteria type", "achievement_key", ach.Key)
		return false
	}

	r.mu.RLock()
	p, ok := r.kinds[kind]
	r.mu.RUnlock()

	if !ok {
		logger.Debug("Unhandled criteria kind", "kind", kind, "achievement_key", ach.Key)
		return false
	}

	return p(ach, session, stats)
}

// Default is the process-wide registry. Kinds register themselves into it
// at package init.
var Default = NewRegistry()

// Evaluate runs the achievement against the default registry.
func Evaluate(ach domain.Achievement, session domain.Session, stats domain.AggregateUserStats) bool {
	return Default.Evaluate(ach, session, stats)
}
