package journal

import (
	"fmt"
)

// Record stores run and its peaks in one transaction and returns the run ID.
func (j *Journal) Record(run Run) (int64, error) {
	tx, err := j.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO runs (input, output, width, height, npeaks, exclude_center,
		 overwritten, residual, started_at, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Input, run.Output, run.Width, run.Height, run.NPeaks, run.ExcludeCenter,
		run.Overwritten, run.Residual, run.StartedAt.UnixNano(), int64(run.Duration),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, p := range run.Peaks {
		_, err := tx.Exec(
			"INSERT INTO peaks (run_id, seq, x, y, dx, dy, magnitude) VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, i, p.X, p.Y, p.DX, p.DY, p.Magnitude,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert peak %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}
