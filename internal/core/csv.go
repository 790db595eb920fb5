package core

import (
	"encoding/csv"
	"fmt"
	"io"
)

// csvHeader matches the dashboard table columns.
var csvHeader = []string{"Date", "Description", "Price"}

// ShortDate renders a date in M/D/YYYY form without zero padding,
// e.g. "3/15/2024".
func ShortDate(d Date) string {
	return fmt.Sprintf("%d/%d/%d", d.Month(), d.Day(), d.Year())
}

// BucketRows projects a bucket into CSV rows: a header row, one row per
// record in bucket order, and a trailing total row. It is a pure projection
// of GroupByMonth's output and holds no state of its own.
func BucketRows(b Bucket) [][]string {
	rows := make([][]string, 0, len(b.Records)+2)
	rows = append(rows, csvHeader)
	for _, r := range b.Records {
		rows = append(rows, []string{ShortDate(r.Date), r.Description, r.Amount.Format()})
	}
	rows = append(rows, []string{"", "Total", b.Total.Format()})
	return rows
}

// WriteBucketCSV writes the bucket projection to w in CSV form.
func WriteBucketCSV(w io.Writer, b Bucket) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(BucketRows(b)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
