package sheets

import (
	"context"

	"ricevute/internal/stats"
)

// Ports for outbound sharing adapters.
type (
	// SummaryWriter publishes a month's derived views to a shared
	// destination (one row per year+month).
	SummaryWriter interface {
		AppendMonthlySummary(ctx context.Context, v stats.Views) (rowRef string, err error)
	}
)
