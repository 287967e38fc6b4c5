// Package template caches the reusable duty templates owned by the
// current actor.
//
// Templates are low-cardinality, so every write is followed by a full
// reload of the owner's list instead of a local patch — the authoritative
// member and duty-title lists never drift from local state. Applying a
// template to an event is deliberately decoupled from duty visibility:
// the caller reloads duties for the target event afterwards.
package template
