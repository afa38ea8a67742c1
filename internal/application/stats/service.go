package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/istlgroup/crm-backend/internal/domain/billing"
	"github.com/istlgroup/crm-backend/internal/domain/procurement"
	"github.com/istlgroup/crm-backend/internal/domain/project"
	"github.com/istlgroup/crm-backend/internal/domain/shared"
)

// Domain identifies which source domain changed for targeted updates
type Domain string

const (
	DomainPurchaseOrder Domain = "purchase_order"
	DomainQuotation     Domain = "quotation"
	DomainBill          Domain = "bill"
	DomainVendor        Domain = "vendor"
	DomainInvoice       Domain = "invoice"
)

// IsValid checks if the domain is a recognized source domain
func (d Domain) IsValid() bool {
	switch d {
	case DomainPurchaseOrder, DomainQuotation, DomainBill, DomainVendor, DomainInvoice:
		return true
	}
	return false
}

// ProjectLock serializes stats writes per project so a scheduled full
// recalculation cannot race a domain-triggered update into a lost write.
type ProjectLock interface {
	Acquire(ctx context.Context, projectUID string) (bool, error)
	Release(ctx context.Context, projectUID string) error
}

// BatchItemError records one project that failed during a batch
// recalculation. It unwraps to ErrBatchItemFailure so callers can
// match the class without parsing messages.
type BatchItemError struct {
	ProjectUID string `json:"project_uid"`
	Message    string `json:"message"`
}

func (e BatchItemError) Error() string {
	return e.ProjectUID + ": " + e.Message
}

func (e BatchItemError) Unwrap() error {
	return shared.ErrBatchItemFailure
}

// BatchResult reports the outcome of a multi-project recalculation
type BatchResult struct {
	SuccessCount int              `json:"success_count"`
	FailureCount int              `json:"failure_count"`
	Duration     time.Duration    `json:"duration"`
	Failures     []BatchItemError `json:"failures,omitempty"`
}

// DefaultStaleness is the threshold after which stats are considered
// stale and due for recalculation.
const DefaultStaleness = 24 * time.Hour

// Service orchestrates recalculation of project statistics: full
// recompute, targeted per-domain updates, bulk recompute over active
// projects, and drift repair.
type Service struct {
	projects      project.Repository
	poReader      procurement.PurchaseOrderReader
	quoteReader   procurement.QuotationReader
	vendorReader  procurement.VendorReader
	billReader    billing.BillReader
	invoiceReader billing.InvoicePaymentReader
	calc          *Calculator
	verifier      *Verifier
	lock          ProjectLock
	logger        *zap.Logger
	queryTimeout  time.Duration
}

// NewService creates the recalculation orchestrator. The calculator uses
// the committed-spend metrics strategy on this path.
func NewService(
	projects project.Repository,
	poReader procurement.PurchaseOrderReader,
	quoteReader procurement.QuotationReader,
	vendorReader procurement.VendorReader,
	billReader billing.BillReader,
	invoiceReader billing.InvoicePaymentReader,
	verifier *Verifier,
	lock ProjectLock,
	logger *zap.Logger,
	queryTimeout time.Duration,
) *Service {
	if queryTimeout <= 0 {
		queryTimeout = 30 * time.Second
	}
	return &Service{
		projects:      projects,
		poReader:      poReader,
		quoteReader:   quoteReader,
		vendorReader:  vendorReader,
		billReader:    billReader,
		invoiceReader: invoiceReader,
		calc:          NewCalculator(CommittedSpendMetrics{}),
		verifier:      verifier,
		lock:          lock,
		logger:        logger,
		queryTimeout:  queryTimeout,
	}
}

// RecalculateProjectStats reloads every domain's aggregates from source
// data, recomputes the derived metrics, and persists the project.
// Idempotent: repeated calls with unchanged source data converge to the
// same stored values.
func (s *Service) RecalculateProjectStats(ctx context.Context, projectUID string) (*project.Project, error) {
	acquired, err := s.lock.Acquire(ctx, projectUID)
	if err != nil {
		return nil, fmt.Errorf("acquire stats lock: %w", err)
	}
	if !acquired {
		return nil, shared.ErrConcurrencyConflict
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), projectUID); err != nil {
			s.logger.Warn("Failed to release stats lock",
				zap.String("project_uid", projectUID),
				zap.Error(err))
		}
	}()

	p, err := s.projects.FindByUID(ctx, projectUID)
	if err != nil {
		return nil, err
	}

	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	poSnap, err := LoadPurchaseOrderSnapshot(qctx, s.poReader, projectUID)
	if err != nil {
		return nil, fmt.Errorf("read purchase order aggregates: %w", err)
	}
	quoteSnap, err := LoadQuotationSnapshot(qctx, s.quoteReader, projectUID)
	if err != nil {
		return nil, fmt.Errorf("read quotation aggregates: %w", err)
	}
	billSnap, err := LoadBillSnapshot(qctx, s.billReader, projectUID)
	if err != nil {
		return nil, fmt.Errorf("read bill aggregates: %w", err)
	}
	invoiceSnap, err := LoadInvoiceSnapshot(qctx, s.invoiceReader, projectUID)
	if err != nil {
		return nil, fmt.Errorf("read invoice aggregates: %w", err)
	}
	vendorSnap, err := LoadVendorSnapshot(qctx, s.vendorReader, projectUID)
	if err != nil {
		return nil, fmt.Errorf("read vendor aggregates: %w", err)
	}

	now := time.Now()
	s.calc.ApplyPurchaseOrderStats(p, poSnap)
	s.calc.ApplyQuotationStats(p, quoteSnap)
	s.calc.ApplyBillStats(p, billSnap)
	s.calc.ApplyInvoiceStats(p, invoiceSnap)
	s.calc.ApplyVendorStats(p, vendorSnap)
	s.calc.ApplyFinancialMetrics(p, now)
	p.MarkStatsCalculated(now)

	if err := s.projects.UpdateStats(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Project stats recalculated",
		zap.String("project_uid", projectUID),
		zap.String("budget_utilized", p.BudgetUtilized.String()),
		zap.String("projected_profit", p.ProjectedProfit.String()),
	)
	return p, nil
}

// UpdateAfterDomainChange recomputes only the changed domain's
// aggregates. A PO change additionally recomputes the derived financial
// metrics, which depend on PO values. Lock contention is reported as
// ComputationSkipped so a racing full recalculation wins.
func (s *Service) UpdateAfterDomainChange(ctx context.Context, projectUID string, domain Domain) error {
	if !domain.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown source domain %q", domain))
	}

	acquired, err := s.lock.Acquire(ctx, projectUID)
	if err != nil {
		return fmt.Errorf("acquire stats lock: %w", err)
	}
	if !acquired {
		s.logger.Info("Targeted stats update skipped, recalculation in flight",
			zap.String("project_uid", projectUID),
			zap.String("domain", string(domain)))
		return shared.ErrComputationSkipped
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), projectUID); err != nil {
			s.logger.Warn("Failed to release stats lock",
				zap.String("project_uid", projectUID),
				zap.Error(err))
		}
	}()

	p, err := s.projects.FindByUID(ctx, projectUID)
	if err != nil {
		return err
	}

	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	now := time.Now()
	switch domain {
	case DomainPurchaseOrder:
		snap, err := LoadPurchaseOrderSnapshot(qctx, s.poReader, projectUID)
		if err != nil {
			return fmt.Errorf("read purchase order aggregates: %w", err)
		}
		s.calc.ApplyPurchaseOrderStats(p, snap)
		s.calc.ApplyFinancialMetrics(p, now)
	case DomainQuotation:
		snap, err := LoadQuotationSnapshot(qctx, s.quoteReader, projectUID)
		if err != nil {
			return fmt.Errorf("read quotation aggregates: %w", err)
		}
		s.calc.ApplyQuotationStats(p, snap)
	case DomainBill:
		snap, err := LoadBillSnapshot(qctx, s.billReader, projectUID)
		if err != nil {
			return fmt.Errorf("read bill aggregates: %w", err)
		}
		s.calc.ApplyBillStats(p, snap)
	case DomainVendor:
		snap, err := LoadVendorSnapshot(qctx, s.vendorReader, projectUID)
		if err != nil {
			return fmt.Errorf("read vendor aggregates: %w", err)
		}
		s.calc.ApplyVendorStats(p, snap)
	case DomainInvoice:
		snap, err := LoadInvoiceSnapshot(qctx, s.invoiceReader, projectUID)
		if err != nil {
			return fmt.Errorf("read invoice aggregates: %w", err)
		}
		s.calc.ApplyInvoiceStats(p, snap)
	}
	p.MarkProcurementUpdated(now)

	if err := s.projects.UpdateStats(ctx, p); err != nil {
		return err
	}

	s.logger.Info("Project stats updated after domain change",
		zap.String("project_uid", projectUID),
		zap.String("domain", string(domain)))
	return nil
}

// RecalculateAllActiveProjects recalculates every active project
// independently. A failed project is logged and counted; it never aborts
// the batch.
func (s *Service) RecalculateAllActiveProjects(ctx context.Context) (BatchResult, error) {
	start := time.Now()
	projects, err := s.projects.FindAllActive(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, p := range projects {
		if _, err := s.RecalculateProjectStats(ctx, p.ProjectUID); err != nil {
			result.FailureCount++
			result.Failures = append(result.Failures, BatchItemError{
				ProjectUID: p.ProjectUID,
				Message:    err.Error(),
			})
			s.logger.Error("Batch recalculation item failed",
				zap.String("project_uid", p.ProjectUID),
				zap.Error(err))
			continue
		}
		result.SuccessCount++
	}
	result.Duration = time.Since(start)

	s.logger.Info("Batch recalculation finished",
		zap.Int("success", result.SuccessCount),
		zap.Int("failed", result.FailureCount),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// FindProjectsNeedingRecalculation returns active projects whose stats
// were never calculated or are older than the staleness threshold.
func (s *Service) FindProjectsNeedingRecalculation(ctx context.Context, staleness time.Duration) ([]*project.Project, error) {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	return s.projects.FindStale(ctx, time.Now().Add(-staleness))
}

// VerifyProjectStats checks one project's stored aggregates against
// source data without repairing. Divergence is returned as
// ErrDivergenceDetected so callers can alert on it.
func (s *Service) VerifyProjectStats(ctx context.Context, projectUID string) (bool, error) {
	consistent, err := s.verifier.Verify(ctx, projectUID)
	if err != nil {
		return false, err
	}
	if !consistent {
		return false, fmt.Errorf("project %s: %w", projectUID, shared.ErrDivergenceDetected)
	}
	return true, nil
}

// FixInconsistentStats verifies every active project and fully
// recalculates the divergent ones. Returns the number of projects fixed.
func (s *Service) FixInconsistentStats(ctx context.Context) (int, error) {
	projects, err := s.projects.FindAllActive(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, p := range projects {
		consistent, err := s.verifier.VerifyProject(ctx, p)
		if err != nil {
			s.logger.Error("Consistency check failed",
				zap.String("project_uid", p.ProjectUID),
				zap.Error(err))
			continue
		}
		if consistent {
			continue
		}
		if _, err := s.RecalculateProjectStats(ctx, p.ProjectUID); err != nil {
			s.logger.Error("Drift repair failed",
				zap.String("project_uid", p.ProjectUID),
				zap.Error(err))
			continue
		}
		fixed++
	}

	if fixed > 0 {
		s.logger.Info("Inconsistent project stats repaired", zap.Int("fixed", fixed))
	}
	return fixed, nil
}

// IsNotFound reports whether err is the project-not-found domain error
func IsNotFound(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code
}
