package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelez/scoping-agent/internal/types"
)

const defaultMaxRows = 200

// PostgresClient queries historical production metrics from the analytics
// database.
type PostgresClient struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the warehouse.
func Connect(ctx context.Context, dsn string) (*PostgresClient, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}
	return &PostgresClient{pool: pool}, nil
}

// Close closes the connection pool.
func (c *PostgresClient) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// QueryHistorical returns completed-project rows matching the filters.
// Word-count proximity is deliberately not filtered here: the enricher ranks
// candidates by similarity, so the query stays broad.
func (c *PostgresClient) QueryHistorical(ctx context.Context, filters Filters) ([]types.HistoricalMatch, error) {
	maxRows := filters.MaxRows
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}

	rows, err := c.pool.Query(ctx,
		`SELECT project_id, domain, source_lang, target_lang, word_count,
		        tat_hours, translator_hours, reviewer_hours, pm_hours
		 FROM completed_projects
		 WHERE ($1 = '' OR domain = $1)
		   AND ($2 = '' OR source_lang = $2)
		   AND ($3 = '' OR target_lang = $3)
		 ORDER BY completed_at DESC, project_id
		 LIMIT $4`,
		filters.Domain, filters.SourceLang, filters.TargetLang, maxRows,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical projects: %w", err)
	}
	defer rows.Close()

	var matches []types.HistoricalMatch
	for rows.Next() {
		var m types.HistoricalMatch
		if err := rows.Scan(&m.ProjectID, &m.Domain, &m.SourceLang, &m.TargetLang,
			&m.WordCount, &m.TATHours, &m.TranslatorHours, &m.ReviewerHours, &m.PMHours); err != nil {
			return nil, fmt.Errorf("failed to scan historical row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read historical rows: %w", err)
	}
	return matches, nil
}
