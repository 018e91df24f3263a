package optim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/softsim/internal/config"
)

func TestGridSearch(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"contact_ks", "spring_ks"},
		[][]float64{{200, 4000}, {100, 150}},
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	base := config.GetPreset("cube", "drop")
	base.Duration = 1.0

	candidates, err := g.Search(context.Background(), base, "max_penetration")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(candidates) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(candidates))
	}

	for i := 1; i < len(candidates); i++ {
		if candidates[i].Value < candidates[i-1].Value {
			t.Errorf("candidates not sorted at %d", i)
		}
	}

	// a stiffer floor lets the cube sink less
	if candidates[0].Params["contact_ks"] != 4000 {
		t.Errorf("expected stiff floor to win, got %v", candidates[0].Params)
	}
	if math.IsInf(candidates[0].Value, 0) || candidates[0].Value <= 0 {
		t.Errorf("expected finite positive penetration, got %f", candidates[0].Value)
	}
}

func TestGridSearchErrors(t *testing.T) {
	if _, err := NewGridSearch([]string{"spring_ks"}, nil); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, err := NewGridSearch([]string{"spring_ks"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}

	base := config.DefaultConfig()
	base.Duration = 0.01

	g, _ := NewGridSearch([]string{"gravity"}, [][]float64{{1}})
	if _, err := g.Search(context.Background(), base, "energy"); err == nil {
		t.Error("expected error for unknown parameter")
	}

	g, _ = NewGridSearch([]string{"spring_ks"}, [][]float64{{10}})
	if _, err := g.Search(context.Background(), base, "nope"); err == nil {
		t.Error("expected error for unknown metric")
	}
}
