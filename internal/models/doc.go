// Package models defines the core domain models for pledge.
//
// # Commitments
//
// A Commitment seals a text behind a fingerprint bound to a deadline:
//   - Commitment: the stored record (text, deadline, stake, fingerprint)
//   - CommitmentStatus: the public view returned by status queries
//
// # Splits
//
// A Split is a fixed total funded by independent contributions:
//   - Split: the stored record, including expected amounts per participant
//   - Contribution: one participant's amount, bound by its own fingerprint
//   - Participant: lazily created record with cumulative totals and history
//   - SplitStatus / ParticipantView / IntegrityReport: the views handed to callers
//
// # Design Principles
//
// 1. **Integer money**: amounts are minor currency units (int64), never floats
// 2. **Millisecond time**: timestamps are Unix milliseconds (int64)
// 3. **Avoid circular references**: Use ID strings instead of pointers for relationships
// 4. **Views never leak**: public views carry aggregates and booleans, not other
// participants' amounts
package models
