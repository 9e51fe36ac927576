package entities

import (
	"context"
	"database/sql"
	"fmt"

	"dealsense/internal/common/logger"
)

const companiesQuery = `
	SELECT id, name
	FROM companies
	WHERE active = true
	ORDER BY name ASC`

// PostgresSource loads companies from the CRM mirror in PostgreSQL.
type PostgresSource struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresSource(db *sql.DB, log logger.Logger) *PostgresSource {
	return &PostgresSource{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "entities.postgres"}),
	}
}

func (s *PostgresSource) LookupCompanies(ctx context.Context) ([]Company, error) {
	rows, err := s.db.QueryContext(ctx, companiesQuery)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan company row: %w", err)
		}
		companies = append(companies, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company rows: %w", err)
	}

	s.logger.Debug("companies loaded", map[string]interface{}{
		"count": len(companies),
	})

	return companies, nil
}
