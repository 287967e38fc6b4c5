// Package notify caches the current actor's notification inbox.
//
// The list is replaced wholesale on every refresh; marking a
// notification read and deleting one patch the local copy after the
// remote write succeeds, the same write-then-patch discipline the duty
// cache uses.
package notify
