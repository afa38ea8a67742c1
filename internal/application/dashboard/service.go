package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/istlgroup/crm-backend/internal/application/stats"
	"github.com/istlgroup/crm-backend/internal/domain/billing"
	"github.com/istlgroup/crm-backend/internal/domain/procurement"
	"github.com/istlgroup/crm-backend/internal/domain/project"
)

const (
	activityLimit     = 10
	topVendorLimit    = 5
	topCategoryLimit  = 5
	trendMonths       = 6
	paymentTrendLimit = 12
)

// Service composes the project dashboard from the stored aggregate
// record plus fresh cross-domain queries. Reading the dashboard is not
// purely read-only: the financial section recomputes the cash-basis
// metrics and persists them back to the project row.
type Service struct {
	projects      project.Repository
	poReader      procurement.PurchaseOrderReader
	quoteReader   procurement.QuotationReader
	vendorReader  procurement.VendorReader
	billReader    billing.BillReader
	invoiceReader billing.InvoicePaymentReader
	calc          *stats.Calculator
	lock          stats.ProjectLock
	logger        *zap.Logger
}

// NewService creates the dashboard composer. The calculator uses the
// cash-basis metrics strategy on this path.
func NewService(
	projects project.Repository,
	poReader procurement.PurchaseOrderReader,
	quoteReader procurement.QuotationReader,
	vendorReader procurement.VendorReader,
	billReader billing.BillReader,
	invoiceReader billing.InvoicePaymentReader,
	lock stats.ProjectLock,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects:      projects,
		poReader:      poReader,
		quoteReader:   quoteReader,
		vendorReader:  vendorReader,
		billReader:    billReader,
		invoiceReader: invoiceReader,
		calc:          stats.NewCalculator(stats.CashBasisMetrics{}),
		lock:          lock,
		logger:        logger,
	}
}

// GetDashboard builds the full composite view for a project. Optional
// sections degrade to empty on failure; only an unknown project fails
// the request.
func (s *Service) GetDashboard(ctx context.Context, projectUID string) (*Dashboard, error) {
	p, err := s.projects.FindByUID(ctx, projectUID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		ProjectUID: p.ProjectUID,
		Name:       p.Name,
		Status:     p.Status.String(),
	}

	if financial, err := s.composeFinancial(ctx, p); err != nil {
		d.Financial = degradeSection[FinancialData](s.logger, "financial", p.ProjectUID, err)
	} else {
		d.Financial = ok(financial)
	}

	if proc, err := s.composeProcurement(ctx, p.ProjectUID); err != nil {
		d.Procurement = degradeSection[ProcurementData](s.logger, "procurement", p.ProjectUID, err)
	} else {
		d.Procurement = ok(proc)
	}

	if acts, err := s.composeActivities(ctx, p.ProjectUID); err != nil {
		d.Activities = degradeSection[[]Activity](s.logger, "activities", p.ProjectUID, err)
	} else {
		d.Activities = ok(acts)
	}

	if vendors, err := s.vendorReader.TopByPurchaseValue(ctx, p.ProjectUID, topVendorLimit); err != nil {
		d.TopVendors = degradeSection[[]procurement.VendorRanking](s.logger, "top_vendors", p.ProjectUID, err)
	} else {
		d.TopVendors = ok(vendors)
	}

	if trend, err := s.composeSpendingTrend(ctx, p.ProjectUID, time.Now()); err != nil {
		d.SpendingTrend = degradeSection[[]TrendPoint](s.logger, "spending_trend", p.ProjectUID, err)
	} else {
		d.SpendingTrend = ok(trend)
	}

	if timeline, err := s.composeTimeline(ctx, p); err != nil {
		d.Timeline = degradeSection[[]TimelineEvent](s.logger, "timeline", p.ProjectUID, err)
	} else {
		d.Timeline = ok(timeline)
	}

	if payments, err := s.composePayments(ctx, p.ProjectUID); err != nil {
		d.Payments = degradeSection[PaymentAnalytics](s.logger, "payments", p.ProjectUID, err)
	} else {
		d.Payments = ok(payments)
	}

	return d, nil
}

// GetFinancialData returns only the financial section, with the same
// persist-on-read side effect as the full dashboard.
func (s *Service) GetFinancialData(ctx context.Context, projectUID string) (FinancialData, error) {
	p, err := s.projects.FindByUID(ctx, projectUID)
	if err != nil {
		return FinancialData{}, err
	}
	return s.composeFinancial(ctx, p)
}

// GetProcurementData returns only the procurement section
func (s *Service) GetProcurementData(ctx context.Context, projectUID string) (ProcurementData, error) {
	if _, err := s.projects.FindByUID(ctx, projectUID); err != nil {
		return ProcurementData{}, err
	}
	return s.composeProcurement(ctx, projectUID)
}

// composeFinancial refreshes the bill and invoice aggregates, derives
// the cash-basis metrics, and persists the recomputed fields back to
// the project row. A failed persist degrades to serving the computed
// values without the side effect.
func (s *Service) composeFinancial(ctx context.Context, p *project.Project) (FinancialData, error) {
	billSnap, err := stats.LoadBillSnapshot(ctx, s.billReader, p.ProjectUID)
	if err != nil {
		return FinancialData{}, fmt.Errorf("read bill aggregates: %w", err)
	}
	invoiceSnap, err := stats.LoadInvoiceSnapshot(ctx, s.invoiceReader, p.ProjectUID)
	if err != nil {
		return FinancialData{}, fmt.Errorf("read invoice aggregates: %w", err)
	}

	now := time.Now()
	s.calc.ApplyBillStats(p, billSnap)
	s.calc.ApplyInvoiceStats(p, invoiceSnap)
	result := s.calc.ApplyFinancialMetrics(p, now)
	p.MarkProcurementUpdated(now)

	s.persistFinancial(ctx, p)

	return FinancialData{
		Budget:                   p.Budget,
		AmountSpent:              result.AmountSpent,
		BudgetUtilizationPercent: result.BudgetUtilizationPercent,
		ProjectedProfit:          result.ProjectedProfit,
		ProfitMarginPercent:      result.ProfitMarginPercent,
		CashInHand:               result.CashInHand,
		CashDeficit:              result.CashDeficit,
		BillingPercent:           result.BillingPercent,
		PaymentPercent:           result.PaymentPercent,
		BurnRate:                 result.BurnRate,
		TotalInvoiceValue:        p.TotalInvoiceValue,
		PaidInvoiceValue:         p.PaidInvoiceValue,
		PendingInvoiceValue:      p.PendingInvoiceValue,
		TotalBillValue:           p.TotalBillValue,
		PaidBillValue:            p.PaidBillValue,
		PendingPaymentValue:      p.PendingPaymentValue,
	}, nil
}

// persistFinancial writes the refreshed aggregates under the per-project
// lock. Contention or a write failure is logged, never surfaced: the
// dashboard still serves the freshly computed values.
func (s *Service) persistFinancial(ctx context.Context, p *project.Project) {
	acquired, err := s.lock.Acquire(ctx, p.ProjectUID)
	if err != nil || !acquired {
		s.logger.Info("Skipping dashboard stats persist, recalculation in flight",
			zap.String("project_uid", p.ProjectUID),
			zap.Error(err))
		return
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), p.ProjectUID); err != nil {
			s.logger.Warn("Failed to release stats lock",
				zap.String("project_uid", p.ProjectUID),
				zap.Error(err))
		}
	}()

	if err := s.projects.UpdateStats(ctx, p); err != nil {
		s.logger.Warn("Failed to persist dashboard-refreshed stats",
			zap.String("project_uid", p.ProjectUID),
			zap.Error(err))
	}
}

func (s *Service) composeProcurement(ctx context.Context, projectUID string) (ProcurementData, error) {
	poBreakdown, err := s.poReader.GroupByStatus(ctx, projectUID)
	if err != nil {
		return ProcurementData{}, fmt.Errorf("group purchase orders: %w", err)
	}
	quoteBreakdown, err := s.quoteReader.GroupByStatus(ctx, projectUID)
	if err != nil {
		return ProcurementData{}, fmt.Errorf("group quotations: %w", err)
	}
	delivery, err := s.poReader.ItemDeliveryTotals(ctx, projectUID)
	if err != nil {
		return ProcurementData{}, fmt.Errorf("read delivery totals: %w", err)
	}
	rating, err := s.vendorReader.AvgRatingByProject(ctx, projectUID)
	if err != nil {
		return ProcurementData{}, fmt.Errorf("read vendor rating: %w", err)
	}
	categories, err := s.poReader.SpendByCategory(ctx, projectUID, topCategoryLimit)
	if err != nil {
		return ProcurementData{}, fmt.Errorf("read spend categories: %w", err)
	}

	rate := decimal.Zero
	if delivery.OrderedItems.IsPositive() {
		rate = delivery.DeliveredItems.Div(delivery.OrderedItems).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return ProcurementData{
		PurchaseOrdersByStatus: poBreakdown,
		QuotationsByStatus:     quoteBreakdown,
		DeliveryRatePercent:    rate,
		AvgVendorRating:        rating.Round(2),
		TopSpendCategories:     categories,
	}, nil
}

// composeActivities merges recent POs, quotations, and payments into a
// single date-descending feed capped at activityLimit entries.
func (s *Service) composeActivities(ctx context.Context, projectUID string) ([]Activity, error) {
	orders, err := s.poReader.RecentByProject(ctx, projectUID, activityLimit)
	if err != nil {
		return nil, fmt.Errorf("read recent purchase orders: %w", err)
	}
	quotes, err := s.quoteReader.RecentByProject(ctx, projectUID, activityLimit)
	if err != nil {
		return nil, fmt.Errorf("read recent quotations: %w", err)
	}
	payments, err := s.invoiceReader.RecentPayments(ctx, projectUID, activityLimit)
	if err != nil {
		return nil, fmt.Errorf("read recent payments: %w", err)
	}

	activities := make([]Activity, 0, len(orders)+len(quotes)+len(payments))
	for _, o := range orders {
		activities = append(activities, Activity{
			Type:      "purchase_order",
			Reference: o.OrderNumber,
			Status:    o.Status,
			Amount:    o.Value,
			Date:      o.OrderDate,
		})
	}
	for _, q := range quotes {
		activities = append(activities, Activity{
			Type:      "quotation",
			Reference: q.QuotationNumber,
			Status:    q.Status,
			Amount:    q.Value,
			Date:      q.QuotationDate,
		})
	}
	for _, pay := range payments {
		activities = append(activities, Activity{
			Type:      "payment",
			Reference: pay.Reference,
			Status:    pay.PaymentMethod,
			Amount:    pay.Amount,
			Date:      pay.PaymentDate,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return dateAfter(activities[i].Date, activities[j].Date)
	})
	if len(activities) > activityLimit {
		activities = activities[:activityLimit]
	}
	return activities, nil
}

// composeSpendingTrend returns exactly trendMonths points, oldest to
// newest, zero-filled for months with no orders.
func (s *Service) composeSpendingTrend(ctx context.Context, projectUID string, now time.Time) ([]TrendPoint, error) {
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trendMonths - 1), 0)
	end := firstMonth.AddDate(0, trendMonths, 0)

	rows, err := s.poReader.MonthlySpend(ctx, projectUID, firstMonth, end)
	if err != nil {
		return nil, fmt.Errorf("read monthly spend: %w", err)
	}
	byMonth := make(map[string]procurement.MonthlyOrderAggregate, len(rows))
	for _, row := range rows {
		byMonth[row.Month] = row
	}

	points := make([]TrendPoint, 0, trendMonths)
	for i := 0; i < trendMonths; i++ {
		month := firstMonth.AddDate(0, i, 0).Format("2006-01")
		point := TrendPoint{
			Month:         month,
			TotalSpend:    decimal.Zero,
			AvgOrderValue: decimal.Zero,
		}
		if row, found := byMonth[month]; found {
			point.TotalSpend = row.TotalValue.Round(2)
			point.OrderCount = row.OrderCount
			if row.OrderCount > 0 {
				point.AvgOrderValue = row.TotalValue.Div(decimal.NewFromInt(row.OrderCount)).Round(2)
			}
		}
		points = append(points, point)
	}
	return points, nil
}

// composeTimeline merges project milestones with delivered-PO, bill, and
// invoice events in chronological order; entries without a date sort
// last.
func (s *Service) composeTimeline(ctx context.Context, p *project.Project) ([]TimelineEvent, error) {
	var events []TimelineEvent
	if p.StartDate != nil {
		events = append(events, TimelineEvent{Type: "milestone", Label: "Project started", Date: p.StartDate})
	}
	if p.EndDate != nil {
		events = append(events, TimelineEvent{Type: "milestone", Label: "Project end", Date: p.EndDate})
	}

	delivered, err := s.poReader.DeliveredOrders(ctx, p.ProjectUID)
	if err != nil {
		return nil, fmt.Errorf("read delivered orders: %w", err)
	}
	for _, d := range delivered {
		events = append(events, TimelineEvent{
			Type:   "purchase_order_delivered",
			Label:  d.OrderNumber,
			Amount: d.Value,
			Date:   d.DeliveredAt,
		})
	}

	bills, err := s.billReader.BillEvents(ctx, p.ProjectUID)
	if err != nil {
		return nil, fmt.Errorf("read bill events: %w", err)
	}
	for _, b := range bills {
		events = append(events, TimelineEvent{
			Type:   "bill",
			Label:  b.BillNumber,
			Amount: b.Value,
			Date:   b.BillDate,
		})
	}

	invoices, err := s.invoiceReader.InvoiceEvents(ctx, p.ProjectUID)
	if err != nil {
		return nil, fmt.Errorf("read invoice events: %w", err)
	}
	for _, inv := range invoices {
		events = append(events, TimelineEvent{
			Type:   "invoice",
			Label:  inv.InvoiceNumber,
			Amount: inv.Value,
			Date:   inv.InvoiceDate,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return dateBefore(events[i].Date, events[j].Date)
	})
	return events, nil
}

func (s *Service) composePayments(ctx context.Context, projectUID string) (PaymentAnalytics, error) {
	byMethod, err := s.invoiceReader.SumReceivedByMethod(ctx, projectUID)
	if err != nil {
		return PaymentAnalytics{}, fmt.Errorf("read payment distribution: %w", err)
	}
	trend, err := s.invoiceReader.MonthlyReceived(ctx, projectUID, paymentTrendLimit)
	if err != nil {
		return PaymentAnalytics{}, fmt.Errorf("read payment trend: %w", err)
	}
	return PaymentAnalytics{ByMethod: byMethod, MonthlyTrend: trend}, nil
}

func degradeSection[T any](logger *zap.Logger, section, projectUID string, err error) Section[T] {
	logger.Warn("Dashboard section degraded to empty",
		zap.String("section", section),
		zap.String("project_uid", projectUID),
		zap.Error(err))
	return degraded[T](err.Error())
}

// dateBefore orders ascending with nil dates last
func dateBefore(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}

// dateAfter orders descending with nil dates last
func dateAfter(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}
