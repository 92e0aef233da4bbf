package journal

import (
	"fmt"
	"time"
)

// Runs returns every recorded run, oldest first, with its peaks.
func (j *Journal) Runs() ([]*Run, error) {
	rows, err := j.db.Query(
		`SELECT id, input, output, width, height, npeaks, exclude_center,
		 overwritten, residual, started_at, duration_ns
		 FROM runs ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var started, duration int64
		err := rows.Scan(
			&r.ID,
			&r.Input,
			&r.Output,
			&r.Width,
			&r.Height,
			&r.NPeaks,
			&r.ExcludeCenter,
			&r.Overwritten,
			&r.Residual,
			&started,
			&duration,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, started)
		r.Duration = time.Duration(duration)
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, r := range runs {
		if r.Peaks, err = j.Peaks(r.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Peaks returns the peaks removed by run runID in removal order.
func (j *Journal) Peaks(runID int64) ([]Peak, error) {
	rows, err := j.db.Query(
		"SELECT x, y, dx, dy, magnitude FROM peaks WHERE run_id = ? ORDER BY seq",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query peaks: %w", err)
	}
	defer rows.Close()

	var peaks []Peak
	for rows.Next() {
		var p Peak
		if err := rows.Scan(&p.X, &p.Y, &p.DX, &p.DY, &p.Magnitude); err != nil {
			return nil, fmt.Errorf("failed to scan peak: %w", err)
		}
		peaks = append(peaks, p)
	}
	return peaks, rows.Err()
}
