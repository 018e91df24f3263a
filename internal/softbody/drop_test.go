package softbody_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/softbody"
)

func unitCube(lift float64) []dynamo.Vec3 {
	var vs []dynamo.Vec3
	for _, x := range []float64{-0.5, 0.5} {
		for _, y := range []float64{0, 1} {
			for _, z := range []float64{-0.5, 0.5} {
				vs = append(vs, dynamo.Vec3{x, y + lift, z})
			}
		}
	}
	return vs
}

var _ = Describe("Body", func() {
	const dt = 0.002

	var (
		params dynamo.Params
		body   *softbody.Body
	)

	BeforeEach(func() {
		params = dynamo.DefaultParams()
	})

	Describe("a cube dropped onto the ground plane", func() {
		var (
			lowest      float64
			touchedDown bool
		)

		BeforeEach(func() {
			var err error
			body, err = softbody.New(unitCube(1.5), params)
			Expect(err).NotTo(HaveOccurred())

			lowest = 1.5
			touchedDown = false
			for i := 0; i < 1500; i++ {
				Expect(body.Step(dt)).To(Succeed())
				for _, p := range body.Particles() {
					if p.Position[1] < lowest {
						lowest = p.Position[1]
					}
					if p.InContact {
						touchedDown = true
					}
				}
			}
		})

		It("reaches the plane", func() {
			Expect(touchedDown).To(BeTrue())
		})

		It("only overlaps the plane transiently", func() {
			Expect(lowest).To(BeNumerically(">", -0.5))
			for _, pos := range body.Positions() {
				Expect(pos[1]).To(BeNumerically(">", -0.2))
			}
		})

		It("comes to rest on top of the plane", func() {
			var meanY float64
			for _, pos := range body.Positions() {
				meanY += pos[1]
			}
			meanY /= float64(body.Len())
			Expect(meanY).To(BeNumerically("~", 0.5, 0.3))
		})

		It("keeps the spring topology unchanged", func() {
			Expect(body.SpringCount()).To(Equal(28))
			Expect(body.Steps()).To(Equal(1500))
			Expect(body.Time()).To(BeNumerically("~", 3.0, 1e-9))
		})
	})

	Describe("free fall without springs or contact", func() {
		BeforeEach(func() {
			params.SpringKs = 0
			params.SpringKd = 0
			params.HandlePlaneCollisions = false
		})

		DescribeTable("vertical velocity after k ticks is k·dt·g",
			func(mass float64, ticks int) {
				params.ParticleMass = mass
				var err error
				body, err = softbody.New(unitCube(0), params)
				Expect(err).NotTo(HaveOccurred())

				for i := 0; i < ticks; i++ {
					Expect(body.Step(dt)).To(Succeed())
				}
				for _, p := range body.Particles() {
					Expect(p.Velocity[1]).To(BeNumerically("~", float64(ticks)*dt*params.Gravity[1], 1e-9))
				}
			},
			Entry("light particles", 0.05, 10),
			Entry("unit particles", 1.0, 100),
			Entry("heavy particles", 40.0, 250),
		)
	})

	Describe("a resting particle above the plane", func() {
		It("feels no force", func() {
			params.UseGravity = false
			var err error
			body, err = softbody.New([]dynamo.Vec3{{0, 2, 0}}, params)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 50; i++ {
				Expect(body.Step(dt)).To(Succeed())
				Expect(body.Particle(0).Force).To(Equal(dynamo.Vec3{}))
			}
			Expect(body.Positions()[0]).To(Equal(dynamo.Vec3{0, 2, 0}))
		})
	})

	Describe("a tilted plane", func() {
		It("pushes along its own normal", func() {
			params.UseGravity = false
			frame := &softbody.Frame{Position: dynamo.Vec3{0, 0, 0}, Up: dynamo.Vec3{0, 2, 2}}
			var err error
			body, err = softbody.New([]dynamo.Vec3{{0, -0.1, -0.1}}, params, softbody.WithPlane(frame))
			Expect(err).NotTo(HaveOccurred())

			body.AccumulateForces()
			f := body.Particle(0).Force
			n := body.Plane().Normal

			Expect(body.Particle(0).InContact).To(BeTrue())
			Expect(f.Dot(n)).To(BeNumerically(">", 0))
			Expect(f.Sub(n.Mul(f.Dot(n))).Len()).To(BeNumerically("<", 1e-9))
		})
	})
})
