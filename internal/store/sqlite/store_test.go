package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"finpanel/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prices.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func d(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	rows := []model.Row{
		{StockID: "2330", Date: d(0), Open: 593, High: 596, Low: 589, Close: 595, Volume: 20000000},
		{StockID: "2330", Date: d(1), Open: 595, High: 601, Low: 594, Close: 600, Volume: 21000000},
		{StockID: "2454", Date: d(0), Open: 900, High: 910, Low: 895, Close: 905, Volume: 5000},
	}
	if err := s.WriteRows(rows); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}

	p, err := s.ReadPanel([]string{"2330", "2454"}, d(0), d(5))
	if err != nil {
		t.Fatalf("ReadPanel: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("rows: got %d, want 3", p.Len())
	}
	g, ok := p.Group("2330")
	if !ok || len(g.Rows) != 2 {
		t.Fatalf("2330 group: ok=%v rows=%d", ok, len(g.Rows))
	}
	r := g.Rows[0]
	if !r.Date.Equal(d(0)) || r.Close != 595 || r.Volume != 20000000 {
		t.Errorf("round trip: %+v", r)
	}
}

func TestWriteRows_UpsertReplaces(t *testing.T) {
	s := openTestStore(t)

	if err := s.WriteRows([]model.Row{{StockID: "2330", Date: d(0), Close: 595}}); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRows([]model.Row{{StockID: "2330", Date: d(0), Close: 598}}); err != nil {
		t.Fatal(err)
	}

	p, err := s.ReadPanel([]string{"2330"}, d(0), d(0))
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 1 {
		t.Fatalf("rows after upsert: got %d, want 1", p.Len())
	}
	if got := p.Rows()[0].Close; got != 598 {
		t.Errorf("close after upsert: got %v, want 598", got)
	}
}

func TestReadPanel_RangeAndOrder(t *testing.T) {
	s := openTestStore(t)

	// Written out of order; ReadPanel must hand back sorted groups.
	rows := []model.Row{
		{StockID: "2330", Date: d(2), Close: 600},
		{StockID: "2330", Date: d(0), Close: 595},
		{StockID: "2330", Date: d(4), Close: 610},
	}
	if err := s.WriteRows(rows); err != nil {
		t.Fatal(err)
	}

	p, err := s.ReadPanel([]string{"2330"}, d(0), d(2))
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 2 {
		t.Fatalf("rows in range: got %d, want 2", p.Len())
	}
	got := p.Rows()
	if !got[0].Date.Equal(d(0)) || !got[1].Date.Equal(d(2)) {
		t.Errorf("order: %s, %s", got[0].Date, got[1].Date)
	}
}

func TestReadPanel_MissingStockContributesNothing(t *testing.T) {
	s := openTestStore(t)
	if err := s.WriteRows([]model.Row{{StockID: "2330", Date: d(0), Close: 595}}); err != nil {
		t.Fatal(err)
	}
	p, err := s.ReadPanel([]string{"2330", "9999"}, d(0), d(5))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Groups()) != 1 {
		t.Errorf("groups: got %d, want 1", len(p.Groups()))
	}
}

func TestWriteRows_EmptyIsNoop(t *testing.T) {
	s := openTestStore(t)
	if err := s.WriteRows(nil); err != nil {
		t.Errorf("WriteRows(nil): %v", err)
	}
}
