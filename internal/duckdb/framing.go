package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/ribo-framing/internal/annotate"
	"github.com/inodb/ribo-framing/internal/stats"
)

// Metagene anchors stored in the metagene table.
const (
	AnchorStart = "start"
	AnchorEnd   = "end"
)

// WriteRun stores the statistics of one run, replacing any earlier run with
// the same sample name. Tables are batch-inserted using the Appender API.
func (s *Store) WriteRun(run RunInfo, fs *stats.FramingStats) error {
	if run.Sample == "" {
		return fmt.Errorf("run has no sample name")
	}
	if err := s.DeleteRun(run.Sample); err != nil {
		return err
	}

	if _, err := s.db.Exec(`INSERT INTO framing_runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Sample, run.Created,
		run.Input.Path, run.Input.Size, run.Input.nullTime(),
		run.Annotation.Path, run.Annotation.Size, run.Annotation.nullTime(),
		int64(run.Records),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err := s.appendRows("outcome_counts", func(a *goduckdb.Appender) error {
		for _, o := range annotate.Outcomes() {
			if err := a.AppendRow(run.Sample, o.String(), int64(fs.Align.Count(o))); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := s.appendRows("frame_length", func(a *goduckdb.Appender) error {
		for bin, frames := range fs.FrameLength.All() {
			for i := range 3 {
				if err := a.AppendRow(run.Sample, bin, int64(i), int64(*frames.At(i))); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return s.appendRows("metagene", func(a *goduckdb.Appender) error {
		for anchor, m := range map[string]*stats.Metagene[stats.LenProfile[int]]{
			AnchorStart: &fs.AroundStart,
			AnchorEnd:   &fs.AroundEnd,
		} {
			for pos := m.Start(); pos <= m.End(); pos++ {
				lens, _ := m.At(pos)
				for bin, n := range lens.All() {
					if *n == 0 {
						continue
					}
					if err := a.AppendRow(run.Sample, anchor, int64(pos), bin, int64(*n)); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// appendRows opens an appender on table, lets fill add rows and flushes.
func (s *Store) appendRows(table string, fill func(*goduckdb.Appender) error) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	if err := fill(appender); err != nil {
		return fmt.Errorf("append %s: %w", table, err)
	}
	return appender.Flush()
}

// DeleteRun removes every row stored for sample.
func (s *Store) DeleteRun(sample string) error {
	for _, table := range []string{"framing_runs", "outcome_counts", "frame_length", "metagene"} {
		if _, err := s.db.Exec("DELETE FROM "+table+" WHERE sample=?", sample); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Samples returns the stored sample names in order.
func (s *Store) Samples() ([]string, error) {
	rows, err := s.db.Query(`SELECT sample FROM framing_runs ORDER BY sample`)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []string
	for rows.Next() {
		var sample string
		if err := rows.Scan(&sample); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

// OutcomeCounts returns the stored outcome counts of a sample keyed by
// outcome name.
func (s *Store) OutcomeCounts(sample string) (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT outcome, reads FROM outcome_counts WHERE sample=?`, sample)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		counts[outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return counts, nil
}

// FrameCounts returns the body-frame counts stored for one length bin.
func (s *Store) FrameCounts(sample, bin string) ([3]int64, error) {
	var counts [3]int64
	rows, err := s.db.Query(`SELECT frame, reads FROM frame_length WHERE sample=? AND length_bin=?`, sample, bin)
	if err != nil {
		return counts, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var frame, n int64
		if err := rows.Scan(&frame, &n); err != nil {
			return counts, fmt.Errorf("scan frame: %w", err)
		}
		if frame >= 0 && frame < 3 {
			counts[frame] = n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("iterate frames: %w", err)
	}
	return counts, nil
}
