package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/istlgroup/crm-backend/internal/domain/billing"
)

func TestGormBillReader_SumPaidAmountByProject(t *testing.T) {
	t.Run("sums paid amounts across every status", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		reader := NewGormBillReader(db.DB)

		// No status filter: a partially settled bill contributes its
		// paid amount even though it is not marked Paid.
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(paid_amount\), 0\) as total FROM "bills" WHERE project_uid = \$1`).
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("21500.00"))

		total, err := reader.SumPaidAmountByProject(context.Background(), "proj-1")
		require.NoError(t, err)
		assert.Equal(t, "21500", total.String())
	})

	t.Run("no rows coalesce to zero", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		reader := NewGormBillReader(db.DB)

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(paid_amount\), 0\) as total FROM "bills"`).
			WithArgs("proj-empty").
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0"))

		total, err := reader.SumPaidAmountByProject(context.Background(), "proj-empty")
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestGormBillReader_AggregateByStatus(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	reader := NewGormBillReader(db.DB)

	mock.ExpectQuery(`SELECT COUNT\(\*\) as count, COALESCE\(SUM\(total_value\), 0\) as value FROM "bills" WHERE project_uid = \$1 AND status = \$2`).
		WithArgs("proj-1", billing.BillStatusPaid).
		WillReturnRows(sqlmock.NewRows([]string{"count", "value"}).AddRow(5, "20000.00"))

	agg, err := reader.AggregateByStatus(context.Background(), "proj-1", billing.BillStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, int64(5), agg.Count)
	assert.Equal(t, "20000", agg.Value.String())
}

func TestGormBillReader_SumBalanceByProject(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	reader := NewGormBillReader(db.DB)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(balance_amount\), 0\) as total FROM "bills" WHERE project_uid = \$1`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("7500.00"))

	total, err := reader.SumBalanceByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "7500", total.String())
}

func TestGormBillReader_BillEvents(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	reader := NewGormBillReader(db.DB)

	billDate := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT bill_number, total_value as value, bill_date FROM "bills" WHERE project_uid = \$1 AND status <> \$2 ORDER BY bill_date NULLS LAST`).
		WithArgs("proj-1", billing.BillStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"bill_number", "value", "bill_date"}).
			AddRow("BILL-1", "8000.00", billDate).
			AddRow("BILL-2", "12000.00", nil))

	rows, err := reader.BillEvents(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BILL-1", rows[0].BillNumber)
	require.NotNil(t, rows[0].BillDate)
	assert.Nil(t, rows[1].BillDate)
}
