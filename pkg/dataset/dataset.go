// Package dataset owns the persisted tabular output: loading prior
// state, deriving the completed-season skip-set, and committing a
// season's batch by rewriting the whole file.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pprasanth/eplharvest/internal/models"
)

// Dataset is the accumulated collection of records across every
// committed season. Columns is the union of all columns seen so far,
// provenance first, then extracted columns in first-seen order.
type Dataset struct {
	Columns []string
	Records []models.Record

	known map[string]bool
}

// New returns an empty dataset carrying only the provenance columns.
func New() *Dataset {
	d := &Dataset{known: make(map[string]bool)}
	for _, col := range models.ProvenanceColumns {
		d.addColumn(col)
	}
	return d
}

// Load reconstructs the dataset from the CSV at path. A missing file
// is a fresh run, not an error.
func Load(path string) (*Dataset, error) {
	d := New()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if len(rows) == 0 {
		return d, nil
	}

	header := rows[0]
	for _, col := range header {
		d.addColumn(col)
	}
	for _, row := range rows[1:] {
		rec := models.NewRecord()
		for i, col := range header {
			if i >= len(row) {
				break
			}
			rec.Set(col, row[i])
		}
		d.Records = append(d.Records, rec)
	}
	return d, nil
}

func (d *Dataset) addColumn(col string) {
	if d.known[col] {
		return
	}
	d.known[col] = true
	d.Columns = append(d.Columns, col)
}

// CompletedSeasons derives the skip-set from the season column of the
// records already persisted. Resumption is whole seasons, never finer.
func (d *Dataset) CompletedSeasons() map[int]bool {
	done := make(map[int]bool)
	for _, rec := range d.Records {
		year, err := strconv.Atoi(rec.Get(models.ColSeason))
		if err != nil {
			continue
		}
		done[year] = true
	}
	return done
}

// Commit appends the batch's records in memory and rewrites the file.
// The rewrite goes through a temp file renamed into place, so a crash
// mid-commit leaves the previous file intact.
func (d *Dataset) Commit(path string, batch models.Batch) error {
	for _, rec := range batch.Records {
		for _, col := range rec.Columns {
			d.addColumn(col)
		}
	}
	d.Records = append(d.Records, batch.Records...)
	return d.write(path)
}

// Write persists the current state without adding records. The driver
// uses it to guarantee the file exists even when no season yielded
// data.
func (d *Dataset) Write(path string) error {
	return d.write(path)
}

func (d *Dataset) write(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp dataset: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(d.Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(d.Columns))
	for _, rec := range d.Records {
		for i, col := range d.Columns {
			row[i] = rec.Get(col)
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp dataset: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace dataset %s: %w", path, err)
	}
	return nil
}
