package core

import (
	"strconv"
	"time"
)

// Bucket holds the records of one calendar month together with their sum.
type Bucket struct {
	Year    int
	Month   time.Month
	Label   string // e.g. "March 2024"
	Records []Record
	Total   Money
}

// monthKey identifies a bucket; day and time-of-day never participate.
type monthKey struct {
	year  int
	month time.Month
}

// MonthLabel renders the human-readable bucket label for a date,
// e.g. "March 2024".
func MonthLabel(d Date) string {
	return d.Time.Month().String() + " " + strconv.Itoa(d.Time.Year())
}

// GroupByMonth partitions records into calendar-month buckets in a single
// pass. Bucket order follows first encounter of each (year, month) key in the
// input; records keep their input order within a bucket. Each bucket's Total
// is the sum of its members' amounts, recomputed freshly on every call.
//
// The function is pure: it performs no I/O, holds no state across calls, and
// never mutates its input. An empty or nil input yields zero buckets.
func GroupByMonth(records []Record) []Bucket {
	var buckets []Bucket
	index := make(map[monthKey]int)

	for _, r := range records {
		key := monthKey{year: r.Date.Time.Year(), month: r.Date.Time.Month()}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{
				Year:  key.year,
				Month: key.month,
				Label: MonthLabel(r.Date),
			})
		}
		buckets[i].Records = append(buckets[i].Records, r)
		buckets[i].Total = buckets[i].Total.Add(r.Amount)
	}

	return buckets
}

// FindBucket returns the bucket for the given year and month, if present.
func FindBucket(buckets []Bucket, year int, month time.Month) (Bucket, bool) {
	for _, b := range buckets {
		if b.Year == year && b.Month == month {
			return b, true
		}
	}
	return Bucket{}, false
}
