package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/istlgroup/crm-backend/internal/domain/billing"
	"github.com/istlgroup/crm-backend/internal/domain/procurement"
	"github.com/istlgroup/crm-backend/internal/domain/project"
)

type mockProjectRepository struct {
	mock.Mock
}

func (m *mockProjectRepository) FindByUID(ctx context.Context, uid string) (*project.Project, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *mockProjectRepository) FindAllActive(ctx context.Context) ([]*project.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Project), args.Error(1)
}

func (m *mockProjectRepository) FindStale(ctx context.Context, cutoff time.Time) ([]*project.Project, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Project), args.Error(1)
}

func (m *mockProjectRepository) Create(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProjectRepository) UpdateStats(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type mockPurchaseOrderReader struct {
	mock.Mock
}

func (m *mockPurchaseOrderReader) CountByProject(ctx context.Context, projectUID string) (int64, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPurchaseOrderReader) SumValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockPurchaseOrderReader) AggregateByStatus(ctx context.Context, projectUID string, status string) (procurement.StatusAggregate, error) {
	args := m.Called(ctx, projectUID, status)
	return args.Get(0).(procurement.StatusAggregate), args.Error(1)
}

func (m *mockPurchaseOrderReader) AggregateByStatuses(ctx context.Context, projectUID string, statuses []string) (procurement.StatusAggregate, error) {
	args := m.Called(ctx, projectUID, statuses)
	return args.Get(0).(procurement.StatusAggregate), args.Error(1)
}

func (m *mockPurchaseOrderReader) GroupByStatus(ctx context.Context, projectUID string) ([]procurement.StatusBreakdown, error) {
	args := m.Called(ctx, projectUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.StatusBreakdown), args.Error(1)
}

func (m *mockPurchaseOrderReader) ItemDeliveryTotals(ctx context.Context, projectUID string) (procurement.ItemDeliveryTotals, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(procurement.ItemDeliveryTotals), args.Error(1)
}

func (m *mockPurchaseOrderReader) SpendByCategory(ctx context.Context, projectUID string, limit int) ([]procurement.CategorySpend, error) {
	args := m.Called(ctx, projectUID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.CategorySpend), args.Error(1)
}

func (m *mockPurchaseOrderReader) MonthlySpend(ctx context.Context, projectUID string, start, end time.Time) ([]procurement.MonthlyOrderAggregate, error) {
	args := m.Called(ctx, projectUID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.MonthlyOrderAggregate), args.Error(1)
}

func (m *mockPurchaseOrderReader) RecentByProject(ctx context.Context, projectUID string, limit int) ([]procurement.RecentOrder, error) {
	args := m.Called(ctx, projectUID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.RecentOrder), args.Error(1)
}

func (m *mockPurchaseOrderReader) DeliveredOrders(ctx context.Context, projectUID string) ([]procurement.DeliveredOrderEvent, error) {
	args := m.Called(ctx, projectUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.DeliveredOrderEvent), args.Error(1)
}

type mockQuotationReader struct {
	mock.Mock
}

func (m *mockQuotationReader) CountByProject(ctx context.Context, projectUID string) (int64, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockQuotationReader) SumValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockQuotationReader) AggregateByStatus(ctx context.Context, projectUID string, status string) (procurement.StatusAggregate, error) {
	args := m.Called(ctx, projectUID, status)
	return args.Get(0).(procurement.StatusAggregate), args.Error(1)
}

func (m *mockQuotationReader) GroupByStatus(ctx context.Context, projectUID string) ([]procurement.StatusBreakdown, error) {
	args := m.Called(ctx, projectUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.StatusBreakdown), args.Error(1)
}

func (m *mockQuotationReader) RecentByProject(ctx context.Context, projectUID string, limit int) ([]procurement.RecentQuotation, error) {
	args := m.Called(ctx, projectUID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.RecentQuotation), args.Error(1)
}

type mockVendorReader struct {
	mock.Mock
}

func (m *mockVendorReader) CountByStatus(ctx context.Context, projectUID string, status string) (int64, error) {
	args := m.Called(ctx, projectUID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockVendorReader) SumPurchaseValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockVendorReader) TopByPurchaseValue(ctx context.Context, projectUID string, limit int) ([]procurement.VendorRanking, error) {
	args := m.Called(ctx, projectUID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.VendorRanking), args.Error(1)
}

func (m *mockVendorReader) AvgRatingByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockBillReader struct {
	mock.Mock
}

func (m *mockBillReader) CountByProject(ctx context.Context, projectUID string) (int64, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBillReader) SumValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockBillReader) AggregateByStatus(ctx context.Context, projectUID string, status string) (billing.StatusAggregate, error) {
	args := m.Called(ctx, projectUID, status)
	return args.Get(0).(billing.StatusAggregate), args.Error(1)
}

func (m *mockBillReader) SumPaidAmountByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockBillReader) SumBalanceByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockBillReader) BillEvents(ctx context.Context, projectUID string) ([]billing.BillEvent, error) {
	args := m.Called(ctx, projectUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.BillEvent), args.Error(1)
}

type mockInvoicePaymentReader struct {
	mock.Mock
}

func (m *mockInvoicePaymentReader) CountInvoicesByProject(ctx context.Context, projectUID string) (int64, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInvoicePaymentReader) SumInvoiceValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockInvoicePaymentReader) AggregateInvoicesByStatus(ctx context.Context, projectUID string, status string) (billing.StatusAggregate, error) {
	args := m.Called(ctx, projectUID, status)
	return args.Get(0).(billing.StatusAggregate), args.Error(1)
}

func (m *mockInvoicePaymentReader) SumPendingByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	args := m.Called(ctx, projectUID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockInvoicePaymentReader) InvoiceEvents(ctx context.Context, projectUID string) ([]billing.InvoiceEvent, error) {
	args := m.Called(ctx, projectUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.InvoiceEvent), args.Error(1)
}

func (m *mockInvoicePaymentReader) RecentPayments(ctx context.Context, projectUID string, limit int) ([]billing.PaymentRecord, error) {
	args := m.Called(ctx, projectUID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.PaymentRecord), args.Error(1)
}

func (m *mockInvoicePaymentReader) SumReceivedByMethod(ctx context.Context, projectUID string) ([]billing.MethodAggregate, error) {
	args := m.Called(ctx, projectUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.MethodAggregate), args.Error(1)
}

func (m *mockInvoicePaymentReader) MonthlyReceived(ctx context.Context, projectUID string, limit int) ([]billing.MonthlyReceived, error) {
	args := m.Called(ctx, projectUID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.MonthlyReceived), args.Error(1)
}

type mockProjectLock struct {
	mock.Mock
}

func (m *mockProjectLock) Acquire(ctx context.Context, projectUID string) (bool, error) {
	args := m.Called(ctx, projectUID)
	return args.Bool(0), args.Error(1)
}

func (m *mockProjectLock) Release(ctx context.Context, projectUID string) error {
	args := m.Called(ctx, projectUID)
	return args.Error(0)
}
