// Package ledgererr declares the error kinds surfaced by the ledger core, so
// callers can test for them with errors.Is instead of string matching.
package ledgererr

import "errors"

// InvalidSignature means Ed25519 verification of a transaction failed.
var InvalidSignature = errors.New("invalid signature")

// NotFinalized means a block a proof depends on is not present in the
// abstract cache, even after a refresh against the main chain.
var NotFinalized = errors.New("block not yet finalized on the main chain")

// MissingBlock means a proof references a block that was neither supplied
// nor already known to the receiver.
var MissingBlock = errors.New("proof is missing a required block")

// ConservationViolation means a transaction's amounts do not balance against
// its sources.
var ConservationViolation = errors.New("sources do not conserve value")

// DoubleSpend means a source has already been consumed by a prior
// transaction accepted at this receiver.
var DoubleSpend = errors.New("source already spent")

// NotYetCommitted means a sender tried to construct a proof for a
// transaction whose block has no committed successor yet.
var NotYetCommitted = errors.New("transaction's block has no committed successor")

// TransportError wraps a transient RPC or socket failure. Callers may retry.
var TransportError = errors.New("transport error")
