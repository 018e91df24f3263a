package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Params)
		wantErr error
	}{
		{"defaults", func(p *Params) {}, nil},
		{"zero mass", func(p *Params) { p.ParticleMass = 0 }, ErrNonPositiveMass},
		{"negative mass", func(p *Params) { p.ParticleMass = -1 }, ErrNonPositiveMass},
		{"NaN mass", func(p *Params) { p.ParticleMass = math.NaN() }, ErrNonPositiveMass},
		{"Inf stiffness", func(p *Params) { p.SpringKs = math.Inf(1) }, ErrInvalidParameter},
		{"NaN gravity", func(p *Params) { p.Gravity = Vec3{0, math.NaN(), 0} }, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
		})
	}
}

func TestPlane_SignedDistance(t *testing.T) {
	pl := Plane{Position: Vec3{0, 1, 0}, Normal: Up}

	if d := pl.SignedDistance(Vec3{3, 2.5, -1}); math.Abs(d-1.5) > 1e-12 {
		t.Errorf("above: got %f, want 1.5", d)
	}
	if d := pl.SignedDistance(Vec3{0, 0.25, 0}); math.Abs(d+0.75) > 1e-12 {
		t.Errorf("below: got %f, want -0.75", d)
	}
}

func TestParticle_IsValid(t *testing.T) {
	p := Particle{Position: Vec3{1, 2, 3}, Mass: 1}
	if !p.IsValid() {
		t.Error("finite particle reported invalid")
	}
	p.Velocity = Vec3{math.Inf(-1), 0, 0}
	if p.IsValid() {
		t.Error("infinite velocity reported valid")
	}
}

func TestSimError(t *testing.T) {
	err := &SimError{Step: 150, Time: 1.5, Message: "test error", Wrapped: ErrInvalidState}
	expected := "step 150 (t=1.5000): test error"
	if err.Error() != expected {
		t.Errorf("SimError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("SimError does not unwrap to ErrInvalidState")
	}
}

func TestParallelFor_CoversRange(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 8} {
		n := 103
		hits := make([]int32, n)
		ParallelFor(n, workers, 4, func(_, start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("workers=%d: index %d visited %d times", workers, i, h)
			}
		}
	}
}
