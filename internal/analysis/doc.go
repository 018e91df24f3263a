// Package analysis characterises how a recorded soft body moved.
//
// The package reduces recorded frames to scalar signals and studies them:
//
//   - [CentroidHeights]: height of the centre of mass along an axis
//   - [Spread]: mean particle distance from the centroid, relative to the
//     first frame; values below one mean the body is squashed
//   - [PowerSpectrum] and [DominantFrequency]: wobble frequency via FFT
//   - [PhasePortraitToASCII]: height against vertical velocity
//
// # Wobble Frequency
//
// A body resting on the plane oscillates at a frequency set by its spring
// and contact stiffness:
//
//	heights := analysis.CentroidHeights(frames, dynamo.Up)
//	f, _ := analysis.DominantFrequency(heights, sampleDt)
package analysis
