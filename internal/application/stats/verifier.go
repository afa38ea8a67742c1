package stats

import (
	"context"

	"go.uber.org/zap"

	"github.com/istlgroup/crm-backend/internal/domain/procurement"
	"github.com/istlgroup/crm-backend/internal/domain/project"
)

// Verifier detects drift between a project's stored aggregates and the
// source-of-truth tables. It recomputes the purchase-order count and
// total value and compares them numerically against the stored fields.
// It never repairs; repair belongs to the Service.
type Verifier struct {
	projects project.Repository
	poReader procurement.PurchaseOrderReader
	logger   *zap.Logger
}

// NewVerifier creates a consistency verifier
func NewVerifier(projects project.Repository, poReader procurement.PurchaseOrderReader, logger *zap.Logger) *Verifier {
	return &Verifier{
		projects: projects,
		poReader: poReader,
		logger:   logger,
	}
}

// Verify returns true when the stored PO aggregates match the source
// data. On mismatch it logs stored vs actual values and returns false.
func (v *Verifier) Verify(ctx context.Context, projectUID string) (bool, error) {
	p, err := v.projects.FindByUID(ctx, projectUID)
	if err != nil {
		return false, err
	}
	return v.VerifyProject(ctx, p)
}

// VerifyProject checks an already loaded project against source data
func (v *Verifier) VerifyProject(ctx context.Context, p *project.Project) (bool, error) {
	actualCount, err := v.poReader.CountByProject(ctx, p.ProjectUID)
	if err != nil {
		return false, err
	}
	actualValue, err := v.poReader.SumValueByProject(ctx, p.ProjectUID)
	if err != nil {
		return false, err
	}

	countMatches := p.TotalPoCount == actualCount
	// Decimal comparison must be numeric, not representation based.
	valueMatches := p.TotalPoValue.Equal(actualValue.Round(2))

	if countMatches && valueMatches {
		return true, nil
	}

	v.logger.Warn("Project stats diverge from source data",
		zap.String("project_uid", p.ProjectUID),
		zap.Int64("stored_po_count", p.TotalPoCount),
		zap.Int64("actual_po_count", actualCount),
		zap.String("stored_po_value", p.TotalPoValue.String()),
		zap.String("actual_po_value", actualValue.String()),
	)
	return false, nil
}
