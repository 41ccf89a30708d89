// Package api exposes the ledger over HTTP/JSON.
//
// All /v1 routes require a bearer token; the verified subject is the caller
// for every operation. /healthz is open for probes.
//
// The layer validates textual fields (a user or forest name, a milestone
// title must be non-empty) before invoking the ledger core, which owns the
// referential, range, and authority checks. Failed requests carry a JSON
// envelope with a human-readable "error" and a stable machine "code".
//
// Admin routes under /v1/admin are gated per request through the ledger's
// admin check rather than middleware, because role records live in the
// ledger store.
package api
