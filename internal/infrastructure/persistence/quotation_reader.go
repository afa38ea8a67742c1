package persistence

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/istlgroup/crm-backend/internal/domain/procurement"
)

// GormQuotationReader implements procurement.QuotationReader using GORM
type GormQuotationReader struct {
	db *gorm.DB
}

// NewGormQuotationReader creates a new GormQuotationReader
func NewGormQuotationReader(db *gorm.DB) *GormQuotationReader {
	return &GormQuotationReader{db: db}
}

// CountByProject counts all quotations for a project
func (r *GormQuotationReader) CountByProject(ctx context.Context, projectUID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("quotations").
		Where("project_uid = ?", projectUID).
		Count(&count).Error
	return count, err
}

// SumValueByProject sums all quotation values for a project
func (r *GormQuotationReader) SumValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("quotations").
		Select("COALESCE(SUM(total_value), 0) as total").
		Where("project_uid = ?", projectUID).
		Scan(&result).Error
	return result.Total, err
}

// AggregateByStatus returns count and value sum for one status
func (r *GormQuotationReader) AggregateByStatus(ctx context.Context, projectUID string, status string) (procurement.StatusAggregate, error) {
	var result struct {
		Count int64
		Value decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("quotations").
		Select("COUNT(*) as count, COALESCE(SUM(total_value), 0) as value").
		Where("project_uid = ? AND status = ?", projectUID, status).
		Scan(&result).Error
	return procurement.StatusAggregate{Count: result.Count, Value: result.Value}, err
}

// GroupByStatus returns count and value sum grouped by status
func (r *GormQuotationReader) GroupByStatus(ctx context.Context, projectUID string) ([]procurement.StatusBreakdown, error) {
	var rows []procurement.StatusBreakdown
	err := r.db.WithContext(ctx).
		Table("quotations").
		Select("status, COUNT(*) as count, COALESCE(SUM(total_value), 0) as value").
		Where("project_uid = ?", projectUID).
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

// RecentByProject returns the most recent quotations by quotation date
func (r *GormQuotationReader) RecentByProject(ctx context.Context, projectUID string, limit int) ([]procurement.RecentQuotation, error) {
	var rows []procurement.RecentQuotation
	err := r.db.WithContext(ctx).
		Table("quotations").
		Select("quotation_number, status, total_value as value, quotation_date").
		Where("project_uid = ?", projectUID).
		Order("quotation_date DESC NULLS LAST").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
