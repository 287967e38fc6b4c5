// Package cli implements the crewcall command tree. Every command wires
// the full cache stack, performs one operation against the service, and
// prints the resulting local state in text or JSON.
package cli
