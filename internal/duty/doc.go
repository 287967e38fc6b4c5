// Package duty caches the duties of a "current" event and layers a purely
// local archive overlay on top of them.
//
// Duty mutations are write-then-patch: after a confirmed remote call, only
// the fields that operation defines are patched on the copy already in
// memory — there is no re-fetch. A duty the server accepted but the cache
// doesn't hold (a cross-event race, or a caller bug) is reported as
// ErrNotInLocalCache, a distinct outcome from a server rejection.
//
// Archive marks have no server representation: they are never sent, never
// parsed from a fetched document, survive duty reloads, and survive status
// changes. The only way to clear one is direct mark manipulation.
package duty
