// Package registry tracks connected participants and the host role.
//
// A Registry holds no locks. It is owned by the session worker, which is the
// only goroutine allowed to read or mutate it.
package registry

import (
	"time"

	"github.com/okian/keyrace/internal/domain/model"
)

// Registry keeps participants in join order.
type Registry struct {
	byConn map[string]*model.Participant
	order  []string
	host   string
	now    func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the clock used to stamp JoinedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		byConn: make(map[string]*model.Participant),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Join registers a participant. The first joiner of a host-less registry
// becomes host. Joining again with a known connID updates the identity only.
func (r *Registry) Join(connID, identity string) (model.Participant, bool) {
	if identity == "" {
		identity = model.AnonymousIdentity
	}
	if p, ok := r.byConn[connID]; ok {
		p.Identity = identity
		return *p, p.IsHost
	}

	p := &model.Participant{
		ConnID:   connID,
		Identity: identity,
		JoinedAt: r.now(),
	}
	if r.host == "" {
		p.IsHost = true
		r.host = connID
	}
	r.byConn[connID] = p
	r.order = append(r.order, connID)
	return *p, p.IsHost
}

// Leave removes and returns a participant. Unknown ids are ignored.
func (r *Registry) Leave(connID string) (model.Participant, bool) {
	p, ok := r.byConn[connID]
	if !ok {
		return model.Participant{}, false
	}
	delete(r.byConn, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.host == connID {
		r.host = ""
	}
	return *p, true
}

// Promote hands the host role to connID. It returns false for unknown ids.
func (r *Registry) Promote(connID string) bool {
	p, ok := r.byConn[connID]
	if !ok {
		return false
	}
	if prev, ok := r.byConn[r.host]; ok {
		prev.IsHost = false
	}
	p.IsHost = true
	r.host = connID
	return true
}

// ClearHost removes the host role without picking a successor.
func (r *Registry) ClearHost() {
	if prev, ok := r.byConn[r.host]; ok {
		prev.IsHost = false
	}
	r.host = ""
}

// Get returns the participant registered under connID.
func (r *Registry) Get(connID string) (model.Participant, bool) {
	p, ok := r.byConn[connID]
	if !ok {
		return model.Participant{}, false
	}
	return *p, true
}

// Host returns the current host, if any.
func (r *Registry) Host() (model.Participant, bool) {
	return r.Get(r.host)
}

// IsHost reports whether connID holds the host role.
func (r *Registry) IsHost(connID string) bool {
	return r.host != "" && r.host == connID
}

// Contains reports whether connID is registered.
func (r *Registry) Contains(connID string) bool {
	_, ok := r.byConn[connID]
	return ok
}

// Participants returns copies of all participants in join order.
func (r *Registry) Participants() []model.Participant {
	out := make([]model.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byConn[id])
	}
	return out
}

// Count returns the number of registered participants.
func (r *Registry) Count() int { return len(r.order) }

// IsEmpty reports whether no participant is registered.
func (r *Registry) IsEmpty() bool { return len(r.order) == 0 }
