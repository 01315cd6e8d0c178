// Package models contains GORM persistence models that map to database tables.
// Domain aggregates carry no ORM tags; each model converts to and from its
// aggregate with ToDomain and FromDomain, and repositories only touch models.
//
// Tables:
//   - customers: CustomerModel
//   - invoices, invoice_line_items, invoice_payments: InvoiceModel and children
//   - invoice_sequences: InvoiceSequenceModel
//   - outbox_events: OutboxEventModel
package models
