// Package store provides the durable key/value store backing the session
// cache. Exactly two values survive process restarts — the session
// credential and the actor id — stored under fixed keys, the way the
// original browser client used localStorage. Absence of either key means
// the next session starts anonymous.
package store
