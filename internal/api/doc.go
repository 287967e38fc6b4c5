// Package api is the sole boundary between the domain caches and the
// remote CrewCall service.
//
// Every remote operation is a single POST of a JSON object to one logical
// endpoint per (domain, operation) pair, e.g. "DutyRoster/addDuty". The
// outcome is always a Result carrying either the raw success payload or a
// human-readable error message — transport failures, non-2xx statuses, and
// business errors signaled inside a 2xx body all collapse into the same
// error shape, and nothing is ever raised past this package.
//
// The facade performs exactly one attempt per call: no retries, no timeout
// escalation, no queueing. Callers decide whether to retry.
package api
