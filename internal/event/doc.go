// Package event caches the set of events visible to the current actor,
// each event's metadata, and the actor's per-event membership role.
//
// Mutation policies follow the entity's trade-off between round-trip cost
// and staleness risk: membership writes always reload the authoritative
// list (the server owns role assignment), the active flag is patched
// locally after confirmation (the flag is the entire mutation), and
// deletion removes local state immediately on success.
package event
