// Package session holds the current actor's identity and authentication
// credential.
//
// The session cache is the only component allowed to know the actor id
// authoritatively. Every other cache keeps its own last-propagated copy,
// updated synchronously through registered ActorSinks at login and restore
// time — no cache ever reads identity from a shared global, and no
// dependent remote call can observe a stale actor id.
package session
