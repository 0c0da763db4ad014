package twse

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

// The fixture stays in Big5's ASCII-compatible subset so the decoder is a
// pass-through.
const statementFixture = `<html><body><table>
<tr><th>Account</th><th>Amount</th></tr>
<tr><td>Revenue</td><td>1,234,567</td></tr>
<tr><td>Operating Income</td><td>345,678</td></tr>
<tr><td>Special Items</td><td>-</td></tr>
<tr><td></td><td>999</td></tr>
</table></body></html>`

func TestFetchStatement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(statementFixture))
	}))
	defer srv.Close()

	c := New(Config{
		MOPSBaseURL:  srv.URL,
		Retries:      1,
		Backoff:      1,
		Timeout:      0,
		Workers:      1,
		RequestDelay: 1,
	}, nil, nil)

	st, err := c.FetchStatement(context.Background(), "2330", Quarter{2024, 1})
	if err != nil {
		t.Fatalf("FetchStatement: %v", err)
	}
	if st == nil {
		t.Fatal("statement: nil, want parsed items")
	}
	if st.StockID != "2330" || st.Quarter != (Quarter{2024, 1}) {
		t.Errorf("identity: %+v", st)
	}
	// Header row has no <td> cells; the blank-account row is skipped.
	if len(st.Items) != 3 {
		t.Fatalf("items: got %d, want 3", len(st.Items))
	}
	if st.Items[0].Account != "Revenue" || math.Abs(st.Items[0].Value-1234567) > 1e-9 {
		t.Errorf("item 0: %+v", st.Items[0])
	}
	if !math.IsNaN(st.Items[2].Value) {
		t.Errorf("dash cell: got %v, want undefined", st.Items[2].Value)
	}
}

func TestFetchStatement_EmptyQuarter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>no report</p></body></html>`))
	}))
	defer srv.Close()

	c := New(Config{MOPSBaseURL: srv.URL, Retries: 1, Backoff: 1, Workers: 1, RequestDelay: 1}, nil, nil)
	st, err := c.FetchStatement(context.Background(), "2330", Quarter{1999, 1})
	if err != nil {
		t.Fatalf("FetchStatement: %v", err)
	}
	if st != nil {
		t.Errorf("unpublished quarter: got %+v, want nil", st)
	}
}
