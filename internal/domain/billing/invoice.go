package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatusPaid marks fully settled client invoices.
const InvoiceStatusPaid = "Paid"

// InvoiceEvent is an invoice entry for the project timeline
type InvoiceEvent struct {
	InvoiceNumber string          `json:"invoice_number"`
	Value         decimal.Decimal `json:"value"`
	InvoiceDate   *time.Time      `json:"invoice_date"`
}

// PaymentRecord is a received payment for the activity feed
type PaymentRecord struct {
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	PaymentDate   *time.Time      `json:"payment_date"`
}

// MethodAggregate is received payment value/count for one payment method
type MethodAggregate struct {
	Method string          `json:"method"`
	Value  decimal.Decimal `json:"value"`
	Count  int64           `json:"count"`
}

// MonthlyReceived is payment value received in one calendar month.
// Month uses the "2006-01" key format.
type MonthlyReceived struct {
	Month string          `json:"month"`
	Value decimal.Decimal `json:"value"`
	Count int64           `json:"count"`
}

// InvoicePaymentReader defines read-only aggregate queries over client
// invoices and their received payments for a project.
type InvoicePaymentReader interface {
	CountInvoicesByProject(ctx context.Context, projectUID string) (int64, error)
	SumInvoiceValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error)
	AggregateInvoicesByStatus(ctx context.Context, projectUID string, status string) (StatusAggregate, error)
	SumPendingByProject(ctx context.Context, projectUID string) (decimal.Decimal, error)
	InvoiceEvents(ctx context.Context, projectUID string) ([]InvoiceEvent, error)
	RecentPayments(ctx context.Context, projectUID string, limit int) ([]PaymentRecord, error)
	SumReceivedByMethod(ctx context.Context, projectUID string) ([]MethodAggregate, error)
	// MonthlyReceived returns at most limit months, most recent first.
	MonthlyReceived(ctx context.Context, projectUID string, limit int) ([]MonthlyReceived, error)
}
