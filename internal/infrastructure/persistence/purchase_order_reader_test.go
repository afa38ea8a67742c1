package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/istlgroup/crm-backend/internal/domain/procurement"
)

func TestGormPurchaseOrderReader_CountByProject(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	reader := NewGormPurchaseOrderReader(db.DB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "purchase_orders" WHERE project_uid = \$1`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := reader.CountByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPurchaseOrderReader_SumValueByProject(t *testing.T) {
	t.Run("sums order values", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		reader := NewGormPurchaseOrderReader(db.DB)

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_value\), 0\) as total FROM "purchase_orders" WHERE project_uid = \$1`).
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("40000.00"))

		total, err := reader.SumValueByProject(context.Background(), "proj-1")
		require.NoError(t, err)
		assert.Equal(t, "40000", total.String())
	})

	t.Run("no rows coalesce to zero", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		reader := NewGormPurchaseOrderReader(db.DB)

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_value\), 0\) as total FROM "purchase_orders"`).
			WithArgs("proj-empty").
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0"))

		total, err := reader.SumValueByProject(context.Background(), "proj-empty")
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestGormPurchaseOrderReader_AggregateByStatus(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	reader := NewGormPurchaseOrderReader(db.DB)

	mock.ExpectQuery(`SELECT COUNT\(\*\) as count, COALESCE\(SUM\(total_value\), 0\) as value FROM "purchase_orders" WHERE project_uid = \$1 AND status = \$2`).
		WithArgs("proj-1", procurement.PoStatusDelivered).
		WillReturnRows(sqlmock.NewRows([]string{"count", "value"}).AddRow(4, "15000.00"))

	agg, err := reader.AggregateByStatus(context.Background(), "proj-1", procurement.PoStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, int64(4), agg.Count)
	assert.Equal(t, "15000", agg.Value.String())
}

func TestGormPurchaseOrderReader_AggregateByStatuses(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	reader := NewGormPurchaseOrderReader(db.DB)

	mock.ExpectQuery(`SELECT COUNT\(\*\) as count, COALESCE\(SUM\(total_value\), 0\) as value FROM "purchase_orders" WHERE project_uid = \$1 AND status IN \(\$2,\$3,\$4\)`).
		WithArgs("proj-1", procurement.PoStatusApproved, procurement.PoStatusOrdered, procurement.PoStatusInTransit).
		WillReturnRows(sqlmock.NewRows([]string{"count", "value"}).AddRow(5, "15000.00"))

	agg, err := reader.AggregateByStatuses(context.Background(), "proj-1", procurement.PendingPoStatuses)
	require.NoError(t, err)
	assert.Equal(t, int64(5), agg.Count)
	assert.Equal(t, "15000", agg.Value.String())
}

func TestGormPurchaseOrderReader_GroupByStatus(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	reader := NewGormPurchaseOrderReader(db.DB)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) as count, COALESCE\(SUM\(total_value\), 0\) as value FROM "purchase_orders" WHERE project_uid = \$1 GROUP BY status ORDER BY status`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "value"}).
			AddRow("Delivered", 4, "15000").
			AddRow("Ordered", 2, "9000"))

	rows, err := reader.GroupByStatus(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Delivered", rows[0].Status)
	assert.Equal(t, int64(4), rows[0].Count)
}

func TestGormPurchaseOrderReader_MonthlySpend(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	reader := NewGormPurchaseOrderReader(db.DB)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT to_char\(order_date, 'YYYY-MM'\) as month, COUNT\(\*\) as order_count, COALESCE\(SUM\(total_value\), 0\) as total_value FROM "purchase_orders" WHERE \(project_uid = \$1 AND status <> \$2\) AND \(order_date >= \$3 AND order_date < \$4\) GROUP BY to_char\(order_date, 'YYYY-MM'\) ORDER BY month`).
		WithArgs("proj-1", procurement.PoStatusCancelled, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"month", "order_count", "total_value"}).
			AddRow("2026-05", 4, "10000"))

	rows, err := reader.MonthlySpend(context.Background(), "proj-1", start, end)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-05", rows[0].Month)
	assert.Equal(t, int64(4), rows[0].OrderCount)
}

func TestGormPurchaseOrderReader_ItemDeliveryTotals(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	reader := NewGormPurchaseOrderReader(db.DB)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(poi\.delivered_quantity\), 0\) as delivered_items, COALESCE\(SUM\(poi\.ordered_quantity\), 0\) as ordered_items FROM purchase_order_items poi JOIN purchase_orders po ON po\.id = poi\.order_id WHERE po\.project_uid = \$1`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"delivered_items", "ordered_items"}).
			AddRow("75", "100"))

	totals, err := reader.ItemDeliveryTotals(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "75", totals.DeliveredItems.String())
	assert.Equal(t, "100", totals.OrderedItems.String())
}
