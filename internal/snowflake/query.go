package snowflake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"frostline/pkg/errors"
)

// ResultSet holds a query result rendered to strings for display
type ResultSet struct {
	Columns   []string
	Rows      [][]string
	Duration  time.Duration
	Truncated bool
}

// RowCount returns the number of fetched rows
func (r *ResultSet) RowCount() int {
	return len(r.Rows)
}

// RunQuery executes a read query and fetches up to rowCap rows. A rowCap
// of zero fetches everything.
func (s *Service) RunQuery(ctx context.Context, query string, rowCap int) (*ResultSet, error) {
	start := time.Now()

	rows, err := s.queryRows(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := &ResultSet{Columns: cols}

	for rows.Next() {
		if rowCap > 0 && len(result.Rows) >= rowCap {
			result.Truncated = true
			break
		}

		values := make([]interface{}, len(cols))
		valuePtrs := make([]interface{}, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]string, len(cols))
		for i := range values {
			row[i] = stringifyValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// SampleQuery is a named analytic query against the demo dataset
type SampleQuery struct {
	Name        string
	Description string
	SQL         string
}

// SampleQueries returns the walkthrough's analytic queries against the
// Tasty Bytes views. They assume the session's database and schema are
// already set.
func SampleQueries() []SampleQuery {
	return []SampleQuery{
		{
			Name:        "top-menu-items",
			Description: "Best selling menu items by total sales",
			SQL: `SELECT TOP 10
    menu_item_name,
    SUM(quantity) AS total_quantity_sold,
    SUM(price) AS total_sales
FROM orders_v
GROUP BY menu_item_name
ORDER BY total_sales DESC`,
		},
		{
			Name:        "menu-margins",
			Description: "Menu item margins from cost of goods and sale price",
			SQL: `SELECT
    menu_item_name,
    item_category,
    cost_of_goods_usd,
    sale_price_usd,
    sale_price_usd - cost_of_goods_usd AS margin_usd
FROM menu
ORDER BY margin_usd DESC`,
		},
		{
			Name:        "top-loyalty-customers",
			Description: "Highest lifetime sales from the customer loyalty metrics",
			SQL: `SELECT TOP 10
    customer_id,
    city,
    total_sales
FROM customer_loyalty_metrics_v
ORDER BY total_sales DESC`,
		},
	}
}

// SampleQueryByName looks up a sample query by its name
func SampleQueryByName(name string) (*SampleQuery, error) {
	for _, q := range SampleQueries() {
		if strings.EqualFold(q.Name, name) {
			return &q, nil
		}
	}

	names := make([]string, 0, len(SampleQueries()))
	for _, q := range SampleQueries() {
		names = append(names, q.Name)
	}

	return nil, errors.New(errors.ErrCodeInvalidInput,
		fmt.Sprintf("Unknown sample query %q", name)).
		WithSuggestions("Available samples: " + strings.Join(names, ", "))
}
