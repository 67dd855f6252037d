// Package warehouse provides access to the analytical store of completed
// project records used for historical enrichment.
package warehouse

import (
	"context"

	"github.com/avelez/scoping-agent/internal/types"
)

// Filters narrows the historical query to records comparable with the
// current document. Empty fields are not filtered on.
type Filters struct {
	Domain     string
	SourceLang string
	TargetLang string

	// MaxRows bounds the candidate set pulled from the warehouse before
	// similarity ranking; 0 means the implementation default.
	MaxRows int
}

// Client is the abstract queryHistorical capability. Implementations return
// raw candidate rows; similarity scoring happens in the enricher.
type Client interface {
	QueryHistorical(ctx context.Context, filters Filters) ([]types.HistoricalMatch, error)
}
