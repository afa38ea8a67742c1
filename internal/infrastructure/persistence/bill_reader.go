package persistence

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/istlgroup/crm-backend/internal/domain/billing"
)

// GormBillReader implements billing.BillReader using GORM
type GormBillReader struct {
	db *gorm.DB
}

// NewGormBillReader creates a new GormBillReader
func NewGormBillReader(db *gorm.DB) *GormBillReader {
	return &GormBillReader{db: db}
}

// CountByProject counts all vendor bills for a project
func (r *GormBillReader) CountByProject(ctx context.Context, projectUID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("bills").
		Where("project_uid = ?", projectUID).
		Count(&count).Error
	return count, err
}

// SumValueByProject sums all bill values for a project
func (r *GormBillReader) SumValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("bills").
		Select("COALESCE(SUM(total_value), 0) as total").
		Where("project_uid = ?", projectUID).
		Scan(&result).Error
	return result.Total, err
}

// AggregateByStatus returns count and value sum for one status
func (r *GormBillReader) AggregateByStatus(ctx context.Context, projectUID string, status string) (billing.StatusAggregate, error) {
	var result struct {
		Count int64
		Value decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("bills").
		Select("COUNT(*) as count, COALESCE(SUM(total_value), 0) as value").
		Where("project_uid = ? AND status = ?", projectUID, status).
		Scan(&result).Error
	return billing.StatusAggregate{Count: result.Count, Value: result.Value}, err
}

// SumPaidAmountByProject sums the paid amount across all bills,
// regardless of status, so partially settled bills count as cash out.
func (r *GormBillReader) SumPaidAmountByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("bills").
		Select("COALESCE(SUM(paid_amount), 0) as total").
		Where("project_uid = ?", projectUID).
		Scan(&result).Error
	return result.Total, err
}

// SumBalanceByProject sums the outstanding balance across all bills.
// Partial payments make this its own aggregate, not total minus paid.
func (r *GormBillReader) SumBalanceByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("bills").
		Select("COALESCE(SUM(balance_amount), 0) as total").
		Where("project_uid = ?", projectUID).
		Scan(&result).Error
	return result.Total, err
}

// BillEvents returns non-pending bills with their dates for the
// timeline; a pending bill is not yet an event.
func (r *GormBillReader) BillEvents(ctx context.Context, projectUID string) ([]billing.BillEvent, error) {
	var rows []billing.BillEvent
	err := r.db.WithContext(ctx).
		Table("bills").
		Select("bill_number, total_value as value, bill_date").
		Where("project_uid = ? AND status <> ?", projectUID, billing.BillStatusPending).
		Order("bill_date NULLS LAST").
		Scan(&rows).Error
	return rows, err
}
