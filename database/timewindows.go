package database

import (
	"context"
	"fmt"
)

type TimeWindowRow struct {
	Name          string
	DurationHours float64
	PowerKw       *float64
}

func (d *Database) SaveTimeWindow(ctx context.Context, row TimeWindowRow) error {
	_, err := d.write.ExecContext(ctx, `
		INSERT INTO time_window (name, duration_hours, power_kw) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET duration_hours = excluded.duration_hours, power_kw = excluded.power_kw`,
		row.Name, row.DurationHours, row.PowerKw)
	if err != nil {
		return fmt.Errorf("saving time window %q: %w", row.Name, err)
	}
	return nil
}

func (d *Database) DeleteTimeWindow(ctx context.Context, name string) error {
	_, err := d.write.ExecContext(ctx, `DELETE FROM time_window WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting time window %q: %w", name, err)
	}
	return nil
}

func (d *Database) GetTimeWindows(ctx context.Context) ([]TimeWindowRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT name, duration_hours, power_kw FROM time_window ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("fetching time windows: %w", err)
	}
	defer rows.Close()

	var windows []TimeWindowRow
	for rows.Next() {
		var r TimeWindowRow
		if err := rows.Scan(&r.Name, &r.DurationHours, &r.PowerKw); err != nil {
			return nil, err
		}
		windows = append(windows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading time window rows: %w", err)
	}

	return windows, nil
}
