package google

import (
	"testing"
	"time"

	"drivelogger/internal/core"
)

func TestOwnerValuesLayout(t *testing.T) {
	d := core.NewDate(2024, 3, 15)
	buckets := []core.Bucket{
		{
			Year:  2024,
			Month: time.March,
			Label: "March 2024",
			Records: []core.Record{
				{ID: "r1", OwnerID: "u1", Date: d, Description: "Oil change", Amount: core.Money{Cents: 4500}},
			},
			Total: core.Money{Cents: 4500},
		},
	}

	values := OwnerValues("u1", buckets)

	// Title, spacer, label, header, one record, total, trailing spacer.
	if len(values) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(values))
	}
	if values[0][0] != "Records for u1" {
		t.Errorf("title row = %v", values[0])
	}
	if values[2][0] != "March 2024" {
		t.Errorf("label row = %v", values[2])
	}
	if values[3][0] != "Date" || values[3][2] != "Price" {
		t.Errorf("header row = %v", values[3])
	}
	if values[4][0] != "3/15/2024" || values[4][2] != "45.00" {
		t.Errorf("record row = %v", values[4])
	}
	if values[5][1] != "Total" || values[5][2] != "45.00" {
		t.Errorf("total row = %v", values[5])
	}
}

func TestOwnerTabTitlePerOwner(t *testing.T) {
	a := ownerTabTitle("Records", "u1")
	b := ownerTabTitle("Records", "u2")
	if a == b {
		t.Fatalf("owners share a tab: %q", a)
	}
	if a != "Records u1" {
		t.Errorf("tab title = %q", a)
	}
}

func TestQuoteTabTitle(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Records u1", "'Records u1'"},
		{"Bob's Records", "'Bob''s Records'"},
	}
	for _, tc := range cases {
		if got := quoteTabTitle(tc.in); got != tc.want {
			t.Errorf("quoteTabTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOwnerValuesEmpty(t *testing.T) {
	values := OwnerValues("u1", nil)
	if len(values) != 2 {
		t.Fatalf("expected title and spacer only, got %d rows", len(values))
	}
}
