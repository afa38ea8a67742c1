// Package billing provides read-side domain models for the financial documents
// attached to a project.
//
// It covers the two money flows a project statistics run has to see:
//   - Bills: vendor-side payables, including outstanding balances
//   - Invoices and payments: client-side receivables and the cash actually
//     received against them
//
// The package defines reader interfaces only. Bills, invoices, and payments
// are owned by the accounting system; this bounded context consumes their
// per-project aggregates (counts, sums by status, payment method breakdowns,
// monthly received series) without ever writing them.
package billing
