package pdf

import (
	"context"
	"io"
)

// Provider renders administrative documents for download from the
// console. Implementations must be safe for concurrent use.
type Provider interface {
	GenerateTenantReport(ctx context.Context, data TenantReportData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateTenantReport(ctx context.Context, data TenantReportData) (io.Reader, error) {
	return nil, nil
}
