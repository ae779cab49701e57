// Package finassist implements the account ledger behind a small financial
// assistant service: it verifies accounts, lists and summarizes their
// transaction history, builds the context handed to a natural-language
// answerer, and composes the statement emails sent to customers.
//
// The core functionalities include:
//   - Store Access: read-only lookups of a Customer by account number and of
//     its transactions, optionally bounded by an inclusive date range. The
//     in-memory Ledger is one Store; the postgres and mongodb packages
//     provide the relational and document ones.
//   - Aggregation: Summarize turns a transaction sequence into per-category
//     totals. Categories are an open set of strings, a new category needs no
//     code change.
//   - Collaborators: the Answerer and Sender interfaces that the assistant
//     package composes with a Store into the five use cases exposed by the
//     server and cmd packages.
//
// Every use case either returns its full result or an *Error carrying one of
// four kinds: InvalidInput, NotFound, StoreFailure or UpstreamFailure.
package finassist
