package indicator

import (
	"errors"
	"testing"
)

func TestCompute_ColumnOrderAndNames(t *testing.T) {
	p := panelFromCloses(t, "2330", []float64{100, 102, 101, 105, 103, 107})
	cols, err := Compute(p, []Spec{
		{Type: "SMA", Windows: []int{3, 5}},
		{Type: "EMA", Windows: []int{3}},
		{Type: "RSI", Windows: []int{2}},
	})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	want := []string{"SMA_3", "SMA_5", "EMA_3", "RSI_2"}
	if len(cols) != len(want) {
		t.Fatalf("columns: got %d, want %d", len(cols), len(want))
	}
	for i, name := range want {
		if cols[i].Name != name {
			t.Errorf("column %d: got %s, want %s", i, cols[i].Name, name)
		}
		if len(cols[i].Values) != p.Len() {
			t.Errorf("column %s: %d values for %d rows", name, len(cols[i].Values), p.Len())
		}
	}
}

func TestCompute_UnknownType(t *testing.T) {
	p := panelFromCloses(t, "2330", []float64{100, 102})
	_, err := Compute(p, []Spec{{Type: "VWAP", Windows: []int{3}}})
	if !errors.Is(err, ErrUnknownIndicator) {
		t.Fatalf("expected ErrUnknownIndicator, got %v", err)
	}
}

func TestCompute_InvalidWindowFailsBatch(t *testing.T) {
	p := panelFromCloses(t, "2330", []float64{100, 102})
	cols, err := Compute(p, []Spec{
		{Type: "SMA", Windows: []int{3}},
		{Type: "RSI", Windows: []int{-1}},
	})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if cols != nil {
		t.Error("partial batch returned on error")
	}
}

func TestCompute_DefaultsWhenWindowsOmitted(t *testing.T) {
	p := panelFromCloses(t, "2330", []float64{100, 102, 101, 105})
	cols, err := Compute(p, []Spec{
		{Type: "RSI"},
		{Type: "BBANDS"},
		{Type: "STOCH"},
		{Type: "WILLR"},
		{Type: "CCI"},
		{Type: "MACD"},
	})
	if err != nil {
		t.Fatalf("Compute with defaults: %v", err)
	}
	names := map[string]bool{}
	for _, c := range cols {
		names[c.Name] = true
	}
	for _, want := range []string{
		"RSI_14", "BB_Middle_20", "BB_Upper_20", "BB_Lower_20",
		"K_14", "D_14", "WILLR_14", "CCI_20",
		"MACD_12_26", "MACD_Signal_12_26_9", "MACD_Hist_12_26_9",
	} {
		if !names[want] {
			t.Errorf("missing default column %s (have %v)", want, names)
		}
	}
}
