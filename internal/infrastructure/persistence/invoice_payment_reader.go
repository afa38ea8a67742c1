package persistence

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/istlgroup/crm-backend/internal/domain/billing"
)

// GormInvoicePaymentReader implements billing.InvoicePaymentReader
// using GORM. Invoices are client-side billing; payment_histories holds
// the money received against them.
type GormInvoicePaymentReader struct {
	db *gorm.DB
}

// NewGormInvoicePaymentReader creates a new GormInvoicePaymentReader
func NewGormInvoicePaymentReader(db *gorm.DB) *GormInvoicePaymentReader {
	return &GormInvoicePaymentReader{db: db}
}

// CountInvoicesByProject counts all invoices for a project
func (r *GormInvoicePaymentReader) CountInvoicesByProject(ctx context.Context, projectUID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("invoices").
		Where("project_uid = ?", projectUID).
		Count(&count).Error
	return count, err
}

// SumInvoiceValueByProject sums all invoice values for a project
func (r *GormInvoicePaymentReader) SumInvoiceValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("invoices").
		Select("COALESCE(SUM(total_value), 0) as total").
		Where("project_uid = ?", projectUID).
		Scan(&result).Error
	return result.Total, err
}

// AggregateInvoicesByStatus returns count and value sum for one status
func (r *GormInvoicePaymentReader) AggregateInvoicesByStatus(ctx context.Context, projectUID string, status string) (billing.StatusAggregate, error) {
	var result struct {
		Count int64
		Value decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("invoices").
		Select("COUNT(*) as count, COALESCE(SUM(total_value), 0) as value").
		Where("project_uid = ? AND status = ?", projectUID, status).
		Scan(&result).Error
	return billing.StatusAggregate{Count: result.Count, Value: result.Value}, err
}

// SumPendingByProject sums the outstanding balance across all invoices
func (r *GormInvoicePaymentReader) SumPendingByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("invoices").
		Select("COALESCE(SUM(balance_amount), 0) as total").
		Where("project_uid = ?", projectUID).
		Scan(&result).Error
	return result.Total, err
}

// InvoiceEvents returns all invoices with their dates for the timeline
func (r *GormInvoicePaymentReader) InvoiceEvents(ctx context.Context, projectUID string) ([]billing.InvoiceEvent, error) {
	var rows []billing.InvoiceEvent
	err := r.db.WithContext(ctx).
		Table("invoices").
		Select("invoice_number, total_value as value, invoice_date").
		Where("project_uid = ?", projectUID).
		Order("invoice_date NULLS LAST").
		Scan(&rows).Error
	return rows, err
}

// RecentPayments returns the most recent received payments
func (r *GormInvoicePaymentReader) RecentPayments(ctx context.Context, projectUID string, limit int) ([]billing.PaymentRecord, error) {
	var rows []billing.PaymentRecord
	err := r.db.WithContext(ctx).
		Table("payment_histories").
		Select("reference, amount, payment_method, payment_date").
		Where("project_uid = ?", projectUID).
		Order("payment_date DESC NULLS LAST").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// SumReceivedByMethod returns received value and count grouped by
// payment method, largest first
func (r *GormInvoicePaymentReader) SumReceivedByMethod(ctx context.Context, projectUID string) ([]billing.MethodAggregate, error) {
	var rows []billing.MethodAggregate
	err := r.db.WithContext(ctx).
		Table("payment_histories").
		Select("payment_method as method, COALESCE(SUM(amount), 0) as value, COUNT(*) as count").
		Where("project_uid = ?", projectUID).
		Group("payment_method").
		Order("value DESC").
		Scan(&rows).Error
	return rows, err
}

// MonthlyReceived returns payment value per month, most recent first,
// capped at limit months
func (r *GormInvoicePaymentReader) MonthlyReceived(ctx context.Context, projectUID string, limit int) ([]billing.MonthlyReceived, error) {
	var rows []billing.MonthlyReceived
	err := r.db.WithContext(ctx).
		Table("payment_histories").
		Select("to_char(payment_date, 'YYYY-MM') as month, COALESCE(SUM(amount), 0) as value, COUNT(*) as count").
		Where("project_uid = ? AND payment_date IS NOT NULL", projectUID).
		Group("to_char(payment_date, 'YYYY-MM')").
		Order("month DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
