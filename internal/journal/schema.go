package journal

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    input TEXT NOT NULL,
    output TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    npeaks INTEGER NOT NULL,
    exclude_center BOOLEAN NOT NULL,
    overwritten BOOLEAN NOT NULL,
    residual REAL NOT NULL,
    started_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL
);

-- One row per removed pair, in removal order
CREATE TABLE IF NOT EXISTS peaks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    seq INTEGER NOT NULL,
    x INTEGER NOT NULL,
    y INTEGER NOT NULL,
    dx INTEGER NOT NULL,
    dy INTEGER NOT NULL,
    magnitude REAL NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE,
    UNIQUE(run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_output ON runs(output);
CREATE INDEX IF NOT EXISTS idx_peaks_run ON peaks(run_id);
`
