package softbody

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/softsim/internal/compute"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/integrators"
)

func scatter(n int) []dynamo.Vec3 {
	ps := make([]dynamo.Vec3, n)
	for i := range ps {
		f := float64(i)
		ps[i] = dynamo.Vec3{math.Cos(f) * (1 + 0.1*f), 1 + 0.3*f, math.Sin(1.7*f)}
	}
	return ps
}

func isolated() dynamo.Params {
	p := dynamo.DefaultParams()
	p.UseGravity = false
	p.HandlePlaneCollisions = false
	return p
}

func TestNew_TopologyCompleteness(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 8, 17} {
		body, err := New(scatter(n), dynamo.DefaultParams())
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if body.Len() != n {
			t.Errorf("n=%d: got %d particles", n, body.Len())
		}
		want := n * (n - 1) / 2
		if body.SpringCount() != want || SpringCount(n) != want {
			t.Errorf("n=%d: got %d springs, want %d", n, body.SpringCount(), want)
		}

		seen := make(map[[2]int]bool)
		for i, p := range body.Particles() {
			for _, s := range p.Springs {
				if s.Other <= i {
					t.Fatalf("n=%d: spring %d->%d not owned by lower index", n, i, s.Other)
				}
				key := [2]int{i, s.Other}
				if seen[key] {
					t.Fatalf("n=%d: duplicate spring %v", n, key)
				}
				seen[key] = true
			}
		}
		if len(seen) != want {
			t.Errorf("n=%d: %d distinct pairs, want %d", n, len(seen), want)
		}
	}
}

func TestNew_InitialParticleState(t *testing.T) {
	params := dynamo.DefaultParams()
	params.ParticleMass = 2.5
	params.ContactKs = 500
	params.ContactKd = 7

	body, err := New(scatter(4), params)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range body.Particles() {
		if p.Velocity.Len() != 0 || p.Force.Len() != 0 {
			t.Errorf("particle %d: expected zero velocity and force", i)
		}
		if p.InContact {
			t.Errorf("particle %d: contact flag set at construction", i)
		}
		if p.Mass != 2.5 {
			t.Errorf("particle %d: mass %f", i, p.Mass)
		}
		if p.Contact.Ks != 500 || p.Contact.Kd != 7 || p.Contact.RestLength != 0 {
			t.Errorf("particle %d: contact spring %+v", i, p.Contact)
		}
	}
}

func TestNew_RestLengthsMatchConstruction(t *testing.T) {
	body, err := New(scatter(9), dynamo.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	pos := body.Positions()
	for i, p := range body.Particles() {
		for _, s := range p.Springs {
			d := pos[s.Other].Sub(pos[i]).Len()
			if math.Abs(d-s.RestLength) > 1e-12 {
				t.Errorf("spring %d->%d: rest %f, distance %f", i, s.Other, s.RestLength, d)
			}
		}
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	zeroMass := dynamo.DefaultParams()
	zeroMass.ParticleMass = 0

	tests := []struct {
		name    string
		pos     []dynamo.Vec3
		params  dynamo.Params
		opts    []Option
		wantErr error
	}{
		{"zero mass", scatter(3), zeroMass, nil, dynamo.ErrNonPositiveMass},
		{"zero up", scatter(3), dynamo.DefaultParams(), []Option{WithPlane(&Frame{Up: dynamo.Vec3{}})}, dynamo.ErrDegenerateNormal},
		{"NaN up", scatter(3), dynamo.DefaultParams(), []Option{WithPlane(&Frame{Up: dynamo.Vec3{math.NaN(), 1, 0}})}, dynamo.ErrDegenerateNormal},
		{"NaN vertex", []dynamo.Vec3{{0, math.NaN(), 0}}, dynamo.DefaultParams(), nil, dynamo.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := New(tt.pos, tt.params, tt.opts...)
			if body != nil {
				t.Error("expected no body on configuration error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			var cfgErr *dynamo.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected *dynamo.ConfigError, got %T", err)
			}
		})
	}
}

func TestNewPlane(t *testing.T) {
	pl, err := NewPlane(nil)
	if err != nil {
		t.Fatal(err)
	}
	if pl.Position.Len() != 0 || pl.Normal != dynamo.Up {
		t.Errorf("default plane: %+v", pl)
	}

	pl, err = NewPlane(&Frame{Position: dynamo.Vec3{1, 2, 3}, Up: dynamo.Vec3{0, 3, 4}})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pl.Normal.Len()-1) > 1e-12 {
		t.Errorf("normal not unit: %v", pl.Normal)
	}
	if !pl.Normal.ApproxEqual(dynamo.Vec3{0, 0.6, 0.8}) {
		t.Errorf("normal: got %v", pl.Normal)
	}
	if pl.Position != (dynamo.Vec3{1, 2, 3}) {
		t.Errorf("position: got %v", pl.Position)
	}
}

func TestEmptyBody_StepsTrivially(t *testing.T) {
	body, err := New(nil, dynamo.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if err := body.Step(0.01); err != nil {
			t.Fatal(err)
		}
	}
	if len(body.Positions()) != 0 || body.Steps() != 10 {
		t.Errorf("unexpected state after empty steps: %d positions, %d steps", len(body.Positions()), body.Steps())
	}
}

func TestStep_InvalidTimestep(t *testing.T) {
	body, _ := New(scatter(2), dynamo.DefaultParams())
	for _, dt := range []float64{0, -0.01, math.NaN(), math.Inf(1)} {
		if err := body.Step(dt); !errors.Is(err, dynamo.ErrInvalidTimestep) {
			t.Errorf("dt=%v: got %v", dt, err)
		}
	}
	if body.Steps() != 0 {
		t.Errorf("rejected steps must not advance the body")
	}
}

func TestStep_DivergenceIsReported(t *testing.T) {
	body, _ := New(scatter(2), isolated())
	body.SetVelocity(1, dynamo.Vec3{math.Inf(1), 0, 0})

	err := body.Step(0.01)
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	var simErr *dynamo.SimError
	if !errors.As(err, &simErr) || simErr.Step != 1 {
		t.Errorf("expected *dynamo.SimError at step 1, got %v", err)
	}
}

func TestResetForces_Idempotent(t *testing.T) {
	body, _ := New(scatter(5), dynamo.DefaultParams())
	body.SetPosition(0, dynamo.Vec3{0, -1, 0})
	body.AccumulateForces()

	nonZero := false
	for _, p := range body.Particles() {
		if p.Force.Len() > 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatal("expected non-zero forces before reset")
	}

	body.ResetForces()
	body.ResetForces()
	for i, p := range body.Particles() {
		if p.Force != (dynamo.Vec3{}) {
			t.Errorf("particle %d: force %v after reset", i, p.Force)
		}
	}
}

func TestApplySprings_ForceSymmetry(t *testing.T) {
	pairs := [][2]dynamo.Vec3{
		{{0, 0, 0}, {1.5, 0, 0}},
		{{0.3, -1, 2}, {-0.7, 0.4, 1.1}},
		{{5, 5, 5}, {5, 5.0001, 5}},
	}
	for _, pair := range pairs {
		body, _ := New(pair[:], isolated())
		body.SetPosition(1, pair[1].Add(dynamo.Vec3{0.2, -0.1, 0.05}))
		body.SetVelocity(0, dynamo.Vec3{0.5, 0, -1})

		body.ResetForces()
		body.ApplySprings()

		f0 := body.Particle(0).Force
		f1 := body.Particle(1).Force
		if f0.Add(f1) != (dynamo.Vec3{}) {
			t.Errorf("forces not exact negatives: %v %v", f0, f1)
		}
		if f0.Len() == 0 {
			t.Errorf("expected non-zero spring force for displaced pair")
		}
	}
}

func TestApplySprings_CoincidentParticlesSkipped(t *testing.T) {
	body, _ := New([]dynamo.Vec3{{0, 0, 0}, {1, 0, 0}}, isolated())
	body.SetPosition(1, dynamo.Vec3{0, 0, 0})
	body.ResetForces()
	body.ApplySprings()
	for i, p := range body.Particles() {
		if p.Force != (dynamo.Vec3{}) || !p.IsValid() {
			t.Errorf("particle %d: expected skipped spring, force %v", i, p.Force)
		}
	}
}

func TestGravityOnly_VelocityIndependentOfMass(t *testing.T) {
	const (
		dt    = 0.01
		ticks = 50
	)
	for _, mass := range []float64{0.1, 1, 7.5} {
		params := dynamo.DefaultParams()
		params.ParticleMass = mass
		params.SpringKs = 0
		params.SpringKd = 0
		params.HandlePlaneCollisions = false

		body, err := New(scatter(4), params)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < ticks; i++ {
			if err := body.Step(dt); err != nil {
				t.Fatal(err)
			}
		}

		want := ticks * dt * params.Gravity[1]
		for i, p := range body.Particles() {
			if math.Abs(p.Velocity[1]-want) > 1e-9 {
				t.Errorf("mass=%v particle %d: vy=%f, want %f", mass, i, p.Velocity[1], want)
			}
			if p.Velocity[0] != 0 || p.Velocity[2] != 0 {
				t.Errorf("mass=%v particle %d: horizontal drift %v", mass, i, p.Velocity)
			}
		}
	}
}

func TestGravityDisabled_NoForce(t *testing.T) {
	body, _ := New([]dynamo.Vec3{{0, 5, 0}}, isolated())
	body.AccumulateForces()
	if body.Particle(0).Force != (dynamo.Vec3{}) {
		t.Errorf("expected zero force, got %v", body.Particle(0).Force)
	}
}

func TestPlaneContact_AboveStaysAtRest(t *testing.T) {
	params := dynamo.DefaultParams()
	params.UseGravity = false

	body, _ := New([]dynamo.Vec3{{0.2, 0.5, -0.3}}, params)
	start := body.Positions()[0]
	for i := 0; i < 100; i++ {
		if err := body.Step(0.01); err != nil {
			t.Fatal(err)
		}
		p := body.Particle(0)
		if p.Force != (dynamo.Vec3{}) || p.InContact {
			t.Fatalf("tick %d: force %v contact %v", i, p.Force, p.InContact)
		}
	}
	if body.Positions()[0] != start {
		t.Errorf("particle moved from %v to %v", start, body.Positions()[0])
	}
}

func TestPlaneContact_PenetrationPushesAlongNormal(t *testing.T) {
	frames := []*Frame{
		nil,
		{Position: dynamo.Vec3{0, 1, 0}, Up: dynamo.Vec3{1, 1, 0}},
	}
	for _, frame := range frames {
		params := dynamo.DefaultParams()
		params.UseGravity = false

		body, err := New([]dynamo.Vec3{{0, 0, 0}}, params, WithPlane(frame))
		if err != nil {
			t.Fatal(err)
		}
		pl := body.Plane()
		below := pl.Position.Sub(pl.Normal.Mul(0.1))
		body.SetPosition(0, below)
		body.AccumulateForces()

		p := body.Particle(0)
		if !p.InContact {
			t.Error("expected contact flag")
		}
		want := pl.Normal.Mul(params.ContactKs * 0.1)
		if p.Force.Sub(want).Len() > 1e-9 {
			t.Errorf("force %v, want %v", p.Force, want)
		}

		// leaving the plane clears the flag
		body.SetPosition(0, pl.Position.Add(pl.Normal))
		body.AccumulateForces()
		if body.Particle(0).InContact {
			t.Error("contact flag not cleared above the plane")
		}
	}
}

func TestPlaneContact_DampingOpposesNormalVelocityOnly(t *testing.T) {
	params := dynamo.DefaultParams()
	params.UseGravity = false

	body, _ := New([]dynamo.Vec3{{0, -0.01, 0}}, params)
	body.SetVelocity(0, dynamo.Vec3{3, -2, 1})
	body.AccumulateForces()

	f := body.Particle(0).Force
	wantY := params.ContactKs*0.01 + params.ContactKd*2
	if math.Abs(f[1]-wantY) > 1e-9 || f[0] != 0 || f[2] != 0 {
		t.Errorf("force %v, want (0,%f,0)", f, wantY)
	}
}

func TestPlaneContact_DisabledSkipsPass(t *testing.T) {
	params := dynamo.DefaultParams()
	params.UseGravity = false
	params.HandlePlaneCollisions = false

	body, _ := New([]dynamo.Vec3{{0, -1, 0}}, params)
	body.AccumulateForces()
	p := body.Particle(0)
	if p.Force != (dynamo.Vec3{}) || p.InContact {
		t.Errorf("expected no contact handling, force %v contact %v", p.Force, p.InContact)
	}
}

func TestTwoParticleScenario(t *testing.T) {
	params := isolated()
	params.SpringKs = 100
	params.SpringKd = 1
	params.ParticleMass = 1

	body, err := New([]dynamo.Vec3{{0, 0, 0}, {1, 0, 0}}, params)
	if err != nil {
		t.Fatal(err)
	}
	if rest := body.Particle(0).Springs[0].RestLength; rest != 1 {
		t.Fatalf("rest length %f, want 1", rest)
	}

	if err := body.Step(0.01); err != nil {
		t.Fatal(err)
	}
	for i, p := range body.Particles() {
		if p.Velocity != (dynamo.Vec3{}) || p.Force != (dynamo.Vec3{}) {
			t.Errorf("particle %d should stay at rest: v=%v f=%v", i, p.Velocity, p.Force)
		}
	}

	body.SetPosition(1, dynamo.Vec3{1.5, 0, 0})
	if err := body.Step(0.01); err != nil {
		t.Fatal(err)
	}
	p0, p1 := body.Particle(0), body.Particle(1)
	a0 := p0.Force.Mul(1 / p0.Mass)
	a1 := p1.Force.Mul(1 / p1.Mass)

	if a0[0] <= 0 || a1[0] >= 0 {
		t.Errorf("expected particles to accelerate toward each other: a0=%v a1=%v", a0, a1)
	}
	if math.Abs(a0[0]+a1[0]) > 1e-12 || math.Abs(a0[0]-50) > 1e-9 {
		t.Errorf("expected equal and opposite 50 m/s² accelerations: a0=%v a1=%v", a0, a1)
	}
	if a0[1] != 0 || a0[2] != 0 {
		t.Errorf("acceleration left the x axis: %v", a0)
	}
}

func TestIntegratorChoiceChangesTrajectory(t *testing.T) {
	params := dynamo.DefaultParams()
	params.HandlePlaneCollisions = false

	semi, _ := New([]dynamo.Vec3{{0, 10, 0}}, params)
	plain, _ := New([]dynamo.Vec3{{0, 10, 0}}, params, WithIntegrator(integrators.NewEuler()))

	_ = semi.Step(0.1)
	_ = plain.Step(0.1)

	if semi.Positions()[0][1] >= 10 {
		t.Error("semi-implicit Euler should move the particle on the first step")
	}
	if plain.Positions()[0][1] != 10 {
		t.Error("plain Euler should keep the starting position on the first step")
	}
}

func TestParallelBackendMatchesSerial(t *testing.T) {
	params := dynamo.DefaultParams()
	serial, _ := New(scatter(24), params)
	parallel, _ := New(scatter(24), params, WithBackend(compute.NewParallel(4)))

	for i := 0; i < 200; i++ {
		if err := serial.Step(0.002); err != nil {
			t.Fatal(err)
		}
		if err := parallel.Step(0.002); err != nil {
			t.Fatal(err)
		}
	}

	a, b := serial.Positions(), parallel.Positions()
	for i := range a {
		if a[i].Sub(b[i]).Len() > 1e-6 {
			t.Errorf("particle %d: serial %v parallel %v", i, a[i], b[i])
		}
	}
}

func TestSnapshot(t *testing.T) {
	body, _ := New(scatter(5), dynamo.DefaultParams())
	body.SetPosition(2, dynamo.Vec3{0, -0.5, 0})
	body.AccumulateForces()

	s := body.Snapshot()
	if len(s.Positions) != 5 || len(s.Forces) != 5 || len(s.Springs) != 10 {
		t.Fatalf("unexpected snapshot sizes: %d %d %d", len(s.Positions), len(s.Forces), len(s.Springs))
	}
	if !s.InContact[2] {
		t.Error("snapshot lost contact flag")
	}
	for _, e := range s.Springs {
		if e.A >= e.B {
			t.Errorf("edge %v not ordered", e)
		}
	}

	s.Positions[0] = dynamo.Vec3{99, 99, 99}
	if body.Positions()[0] == s.Positions[0] {
		t.Error("snapshot aliases body state")
	}
}

func TestSetParam(t *testing.T) {
	body, _ := New(scatter(3), dynamo.DefaultParams())

	if err := body.SetParam("spring_ks", 42); err != nil {
		t.Fatal(err)
	}
	for _, p := range body.Particles() {
		for _, s := range p.Springs {
			if s.Ks != 42 {
				t.Errorf("spring ks not updated: %f", s.Ks)
			}
		}
	}
	if body.GetParams()["spring_ks"] != 42 {
		t.Error("GetParams does not reflect update")
	}

	if err := body.SetParam("contact_kd", 3); err != nil {
		t.Fatal(err)
	}
	if body.Particle(0).Contact.Kd != 3 {
		t.Error("contact kd not written through")
	}

	if err := body.SetParam("mass", 0); !errors.Is(err, dynamo.ErrNonPositiveMass) {
		t.Errorf("expected ErrNonPositiveMass, got %v", err)
	}
	if err := body.SetParam("gravity_y", math.NaN()); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if err := body.SetParam("viscosity", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if len(body.ParamNames()) != len(body.GetParams()) {
		t.Error("ParamNames does not cover GetParams")
	}
}
