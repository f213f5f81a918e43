package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/tenant-stock-api/internal/domain/schema"
)

// ProbeCapabilities lee information_schema una vez al arrancar y arma el descriptor de columnas.
func ProbeCapabilities(ctx context.Context, q Querier) (schema.Capabilities, error) {
	rows, err := q.Query(ctx, `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = ANY($1)`,
		[]string{"inventory_items", "audit_entries"},
	)
	if err != nil {
		return schema.Capabilities{}, fmt.Errorf("probe columns: %w", err)
	}
	defer rows.Close()

	cols := make(map[string][]string)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return schema.Capabilities{}, fmt.Errorf("scan column: %w", err)
		}
		cols[table] = append(cols[table], column)
	}
	if err := rows.Err(); err != nil {
		return schema.Capabilities{}, fmt.Errorf("probe columns: %w", err)
	}
	return schema.FromColumns(cols), nil
}
