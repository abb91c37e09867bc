package calendar

import (
	"strings"

	"github.com/jw6ventures/orgcal/internal/store"
)

// Palette holds the display colors assigned to admins. Assignment cycles by
// insertion order, so two admins share a color once the admin count exceeds
// the palette size.
var Palette = []string{
	"#2563eb", "#16a34a", "#dc2626", "#9333ea",
	"#ea580c", "#0d9488", "#ca8a04", "#be185d",
}

// Scope selects which admins a registry includes.
type Scope int

const (
	// AllAdmins includes every known admin.
	AllAdmins Scope = iota
	// SubscribedOnly restricts the registry to admins the viewer follows.
	SubscribedOnly
)

// Entry is one admin in the filter registry.
type Entry struct {
	ID          string
	DisplayName string
	Color       string
	Active      bool
}

// Registry tracks the known admins and which of them are currently toggled
// visible. It is a plain value owned by the request that builds it; nothing
// here is shared or persisted.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// BuildRegistry assigns display names and palette colors to the eligible
// admins, in input order. All included admins start active.
func BuildRegistry(admins []store.User, scope Scope, subscribedTo []string) *Registry {
	followed := make(map[string]bool, len(subscribedTo))
	for _, id := range subscribedTo {
		followed[id] = true
	}

	r := &Registry{index: make(map[string]int)}
	for _, a := range admins {
		if scope == SubscribedOnly && !followed[a.ID] {
			continue
		}
		r.index[a.ID] = len(r.entries)
		r.entries = append(r.entries, Entry{
			ID:          a.ID,
			DisplayName: displayName(a),
			Color:       Palette[len(r.entries)%len(Palette)],
			Active:      true,
		})
	}
	return r
}

// displayName is the local part of the admin's email, or the raw id when
// there is no usable email.
func displayName(u store.User) string {
	if i := strings.Index(u.Email, "@"); i > 0 {
		return u.Email[:i]
	}
	return u.ID
}

// Toggle flips the visibility of an admin. Unknown ids are ignored.
func (r *Registry) Toggle(id string) {
	if i, ok := r.index[id]; ok {
		r.entries[i].Active = !r.entries[i].Active
	}
}

// SetActive sets the visibility of an admin explicitly.
func (r *Registry) SetActive(id string, active bool) {
	if i, ok := r.index[id]; ok {
		r.entries[i].Active = active
	}
}

// ActiveSet returns the ids currently toggled visible.
func (r *Registry) ActiveSet() map[string]bool {
	active := make(map[string]bool, len(r.entries))
	for _, e := range r.entries {
		if e.Active {
			active[e.ID] = true
		}
	}
	return active
}

// Entries returns the registry rows in insertion order.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// Lookup returns the entry for an admin id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	if i, ok := r.index[id]; ok {
		return r.entries[i], true
	}
	return Entry{}, false
}
