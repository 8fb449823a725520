// Package core provides the business logic for catalog ingestion and queries.
//
// This package holds the domain logic independent of any transport or storage
// engine. It can be used by web handlers, CLI tools, or tests without
// modification; storage is injected through the [Store] interface.
//
// # Ingestion
//
// An upload flows through three steps:
//
//  1. [ParseCSV] decodes the file into [RawRow] values keyed by header name.
//     Encoding and CSV syntax problems reject the whole file.
//  2. [RowValidator.Validate] normalizes each row and checks every rule,
//     returning a [RowResult] with either a [Product] or all violations.
//  3. [Pipeline.Ingest] upserts valid rows one at a time, in file order, and
//     folds each row result into an [IngestionOutcome].
//
// A row that fails validation or whose write fails is reported in the
// outcome and never stops the remaining rows. Rows already written are never
// rolled back.
//
// # Queries
//
// [Service.ListProducts] and [Service.SearchProducts] page through the store
// with a stable order. Filters are validated before the store is queried.
//
// # Error Handling
//
// Whole-request rejections are sentinel errors (see errors.go) matched with
// errors.Is. [MapError] maps any error to a user-facing message and support
// code.
package core
