package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pprasanth/eplharvest/pkg/utils"
)

// ColumnPredicate decides whether a table's header row makes it a
// plausible carrier of the records we are after.
type ColumnPredicate struct {
	Name  string
	Match func(column string) bool
}

// Contains returns a predicate matching any normalized column name
// containing substr.
func Contains(substr string) ColumnPredicate {
	return ColumnPredicate{
		Name: "contains:" + substr,
		Match: func(column string) bool {
			return strings.Contains(column, substr)
		},
	}
}

// SelectTable scans every table in doc against a ranked predicate
// list. Predicates are tried in order and the first one with a
// matching table wins; the table's normalized, de-duplicated column
// names come back alongside it. A nil selection means no table
// qualified.
func SelectTable(doc *goquery.Document, policy []ColumnPredicate) (*goquery.Selection, []string) {
	type candidate struct {
		table *goquery.Selection
		cols  []string
	}

	var candidates []candidate
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		cols := headerColumns(table)
		if len(cols) > 0 {
			candidates = append(candidates, candidate{table: table, cols: cols})
		}
	})

	for _, pred := range policy {
		for _, c := range candidates {
			for _, col := range c.cols {
				if pred.Match(col) {
					return c.table, c.cols
				}
			}
		}
	}
	return nil, nil
}

// headerColumns reads a table's header cells, preferring thead over a
// leading row of th cells.
func headerColumns(table *goquery.Selection) []string {
	var raw []string
	header := table.Find("thead tr").First()
	if header.Length() == 0 {
		header = table.Find("tr").First()
	}
	header.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		raw = append(raw, cell.Text())
	})
	return utils.UniqueColumns(raw)
}

// tableRows returns the cell texts of every data row, skipping the
// header row when the table has no tbody.
func tableRows(table *goquery.Selection) [][]string {
	var rows [][]string
	body := table.Find("tbody tr")
	skipFirst := false
	if body.Length() == 0 {
		body = table.Find("tr")
		skipFirst = true
	}
	body.Each(func(i int, row *goquery.Selection) {
		if skipFirst && i == 0 {
			return
		}
		var cells []string
		row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, utils.CleanText(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}
