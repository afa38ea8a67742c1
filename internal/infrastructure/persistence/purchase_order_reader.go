package persistence

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/istlgroup/crm-backend/internal/domain/procurement"
)

// GormPurchaseOrderReader implements procurement.PurchaseOrderReader
// using GORM
type GormPurchaseOrderReader struct {
	db *gorm.DB
}

// NewGormPurchaseOrderReader creates a new GormPurchaseOrderReader
func NewGormPurchaseOrderReader(db *gorm.DB) *GormPurchaseOrderReader {
	return &GormPurchaseOrderReader{db: db}
}

// CountByProject counts all purchase orders for a project
func (r *GormPurchaseOrderReader) CountByProject(ctx context.Context, projectUID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("purchase_orders").
		Where("project_uid = ?", projectUID).
		Count(&count).Error
	return count, err
}

// SumValueByProject sums all purchase order values for a project
func (r *GormPurchaseOrderReader) SumValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("purchase_orders").
		Select("COALESCE(SUM(total_value), 0) as total").
		Where("project_uid = ?", projectUID).
		Scan(&result).Error
	return result.Total, err
}

// AggregateByStatus returns count and value sum for one status
func (r *GormPurchaseOrderReader) AggregateByStatus(ctx context.Context, projectUID string, status string) (procurement.StatusAggregate, error) {
	var result struct {
		Count int64
		Value decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("purchase_orders").
		Select("COUNT(*) as count, COALESCE(SUM(total_value), 0) as value").
		Where("project_uid = ? AND status = ?", projectUID, status).
		Scan(&result).Error
	return procurement.StatusAggregate{Count: result.Count, Value: result.Value}, err
}

// AggregateByStatuses returns count and value sum over a status set
func (r *GormPurchaseOrderReader) AggregateByStatuses(ctx context.Context, projectUID string, statuses []string) (procurement.StatusAggregate, error) {
	var result struct {
		Count int64
		Value decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("purchase_orders").
		Select("COUNT(*) as count, COALESCE(SUM(total_value), 0) as value").
		Where("project_uid = ? AND status IN ?", projectUID, statuses).
		Scan(&result).Error
	return procurement.StatusAggregate{Count: result.Count, Value: result.Value}, err
}

// GroupByStatus returns count and value sum grouped by status
func (r *GormPurchaseOrderReader) GroupByStatus(ctx context.Context, projectUID string) ([]procurement.StatusBreakdown, error) {
	var rows []procurement.StatusBreakdown
	err := r.db.WithContext(ctx).
		Table("purchase_orders").
		Select("status, COUNT(*) as count, COALESCE(SUM(total_value), 0) as value").
		Where("project_uid = ?", projectUID).
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

// ItemDeliveryTotals sums ordered and delivered line-item quantities
func (r *GormPurchaseOrderReader) ItemDeliveryTotals(ctx context.Context, projectUID string) (procurement.ItemDeliveryTotals, error) {
	var result struct {
		DeliveredItems decimal.Decimal
		OrderedItems   decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("purchase_order_items poi").
		Select("COALESCE(SUM(poi.delivered_quantity), 0) as delivered_items, COALESCE(SUM(poi.ordered_quantity), 0) as ordered_items").
		Joins("JOIN purchase_orders po ON po.id = poi.order_id").
		Where("po.project_uid = ?", projectUID).
		Scan(&result).Error
	return procurement.ItemDeliveryTotals{
		DeliveredItems: result.DeliveredItems,
		OrderedItems:   result.OrderedItems,
	}, err
}

// SpendByCategory returns the top spend categories by purchase value
func (r *GormPurchaseOrderReader) SpendByCategory(ctx context.Context, projectUID string, limit int) ([]procurement.CategorySpend, error) {
	var rows []procurement.CategorySpend
	err := r.db.WithContext(ctx).
		Table("purchase_orders").
		Select("category, COALESCE(SUM(total_value), 0) as value").
		Where("project_uid = ? AND status <> ?", projectUID, procurement.PoStatusCancelled).
		Group("category").
		Order("value DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// MonthlySpend aggregates non-cancelled order spend per calendar month
// over the half-open interval [start, end)
func (r *GormPurchaseOrderReader) MonthlySpend(ctx context.Context, projectUID string, start, end time.Time) ([]procurement.MonthlyOrderAggregate, error) {
	var rows []procurement.MonthlyOrderAggregate
	err := r.db.WithContext(ctx).
		Table("purchase_orders").
		Select("to_char(order_date, 'YYYY-MM') as month, COUNT(*) as order_count, COALESCE(SUM(total_value), 0) as total_value").
		Where("project_uid = ? AND status <> ?", projectUID, procurement.PoStatusCancelled).
		Where("order_date >= ? AND order_date < ?", start, end).
		Group("to_char(order_date, 'YYYY-MM')").
		Order("month").
		Scan(&rows).Error
	return rows, err
}

// RecentByProject returns the most recent purchase orders by order date
func (r *GormPurchaseOrderReader) RecentByProject(ctx context.Context, projectUID string, limit int) ([]procurement.RecentOrder, error) {
	var rows []procurement.RecentOrder
	err := r.db.WithContext(ctx).
		Table("purchase_orders").
		Select("order_number, status, total_value as value, order_date").
		Where("project_uid = ?", projectUID).
		Order("order_date DESC NULLS LAST").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// DeliveredOrders returns delivered purchase orders with delivery dates
func (r *GormPurchaseOrderReader) DeliveredOrders(ctx context.Context, projectUID string) ([]procurement.DeliveredOrderEvent, error) {
	var rows []procurement.DeliveredOrderEvent
	err := r.db.WithContext(ctx).
		Table("purchase_orders").
		Select("order_number, total_value as value, delivered_date as delivered_at").
		Where("project_uid = ? AND status = ?", projectUID, procurement.PoStatusDelivered).
		Order("delivered_date NULLS LAST").
		Scan(&rows).Error
	return rows, err
}
