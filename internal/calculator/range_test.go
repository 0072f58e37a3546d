package calculator

import (
	"testing"

	"LevelSentinel/internal/model"
)

func TestExtend(t *testing.T) {
	h, l := Extend(105, 95, 110, 97)
	if h != 110 || l != 95 {
		t.Errorf("expected 110/95, got %.0f/%.0f", h, l)
	}
	h, l = Extend(105, 95, 100, 90)
	if h != 105 || l != 90 {
		t.Errorf("expected 105/90, got %.0f/%.0f", h, l)
	}
}

func TestRangeOf(t *testing.T) {
	bars := []model.Bar{
		{High: 101, Low: 99},
		{High: 104, Low: 100},
		{High: 102, Low: 97},
	}
	h, l, err := RangeOf(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 104 || l != 97 {
		t.Errorf("expected 104/97, got %.0f/%.0f", h, l)
	}
	if _, _, err := RangeOf(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		price, high, low float64
		want             float64
	}{
		{100, 110, 90, 0.5},
		{90, 110, 90, 0},
		{120, 110, 90, 1},
		{80, 110, 90, 0},
		{100, 100, 100, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.price, tt.high, tt.low)
		if err != nil {
			t.Errorf("price %.0f: unexpected error: %v", tt.price, err)
			continue
		}
		if got != tt.want {
			t.Errorf("price %.0f in [%.0f,%.0f]: expected %.2f, got %.2f", tt.price, tt.low, tt.high, tt.want, got)
		}
	}
	if _, err := RangePosition(100, 90, 110); err == nil {
		t.Error("expected error when high < low")
	}
}
