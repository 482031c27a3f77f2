package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carepath/domain/carepath"
)

func TestStreamReproducibility(t *testing.T) {
	a := NewStream(42)
	b := NewStream(42)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Float64(), b.Float64(), "streams with the same seed diverged at draw %d", i)
	}

	c := NewStream(43)
	d := NewStream(42)
	same := 0
	for i := 0; i < 100; i++ {
		if c.Float64() == d.Float64() {
			same++
		}
	}
	assert.Less(t, same, 5, "streams with different seeds should not track each other")
}

func TestSampleRespectsFloor(t *testing.T) {
	// Normal with mean well below the floor: nearly every raw draw would be
	// negative, all must come back clamped.
	spec := carepath.StageSpec{
		Name: "instant", Kind: carepath.KindNormal,
		Params: carepath.Params{Mean: -5, Sigma: 1},
	}
	stream := NewStream(7)
	for i := 0; i < 500; i++ {
		v := Sample(spec, stream)
		require.GreaterOrEqual(t, v, FloorHours)
	}
}

func TestSampleSupports(t *testing.T) {
	cases := []struct {
		name     string
		spec     carepath.StageSpec
		min, max float64
	}{
		{
			name: "uniform",
			spec: carepath.StageSpec{Name: "u", Kind: carepath.KindUniform, Params: carepath.Params{Min: 2, Max: 4}},
			min:  2, max: 4,
		},
		{
			name: "triangular",
			spec: carepath.StageSpec{Name: "t", Kind: carepath.KindTriangular, Params: carepath.Params{Min: 1, Mode: 2, Max: 5}},
			min:  1, max: 5,
		},
		{
			name: "exponential",
			spec: carepath.StageSpec{Name: "e", Kind: carepath.KindExponential, Params: carepath.Params{Mean: 10}},
			min:  FloorHours, max: 1e6,
		},
		{
			name: "gamma",
			spec: carepath.StageSpec{Name: "g", Kind: carepath.KindGamma, Params: carepath.Params{Shape: 4, Scale: 18}},
			min:  FloorHours, max: 1e6,
		},
		{
			name: "weibull",
			spec: carepath.StageSpec{Name: "w", Kind: carepath.KindWeibull, Params: carepath.Params{Shape: 1.5, Scale: 88}},
			min:  FloorHours, max: 1e6,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stream := NewStream(99)
			for i := 0; i < 1000; i++ {
				v := Sample(tc.spec, stream)
				require.GreaterOrEqual(t, v, tc.min)
				require.LessOrEqual(t, v, tc.max)
			}
		})
	}
}

func TestSampleLogNormalMomentMatching(t *testing.T) {
	// The configured mean and sigma are linear-scale moments; the sample mean
	// of many draws must land on the configured mean, not exp(mu).
	spec := carepath.StageSpec{
		Name: "ack", Kind: carepath.KindLogNormal,
		Params: carepath.Params{Mean: 48, Sigma: 1},
	}
	stream := NewStream(42)
	n := 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += Sample(spec, stream)
	}
	assert.InDelta(t, 48.0, sum/float64(n), 0.2)
}

func TestSampleNoShowGating(t *testing.T) {
	never := carepath.StageSpec{
		Name: "confirm", Kind: carepath.KindNoShow,
		Params: carepath.Params{Base: 12, Prob: 0, RescheduleMin: 24, RescheduleMax: 72},
	}
	stream := NewStream(1)
	for i := 0; i < 200; i++ {
		assert.Equal(t, 12.0, Sample(never, stream), "prob=0 must never reschedule")
	}

	always := carepath.StageSpec{
		Name: "confirm", Kind: carepath.KindNoShow,
		Params: carepath.Params{Base: 12, Prob: 1, RescheduleMin: 24, RescheduleMax: 72},
	}
	stream = NewStream(1)
	for i := 0; i < 200; i++ {
		v := Sample(always, stream)
		require.GreaterOrEqual(t, v, 36.0)
		require.LessOrEqual(t, v, 84.0)
	}
}

func TestSampleTriangularAsymmetric(t *testing.T) {
	// Mode sits between min and max but well below max, the shape every
	// baseline scenario uses. Draws must stay inside [min, max] and the
	// sample mean must land on (min+mode+max)/3.
	spec := carepath.StageSpec{
		Name: "payer_review", Kind: carepath.KindTriangular,
		Params: carepath.Params{Min: 48, Mode: 96, Max: 192},
	}
	stream := NewStream(42)
	n := 5000
	sum := 0.0
	for i := 0; i < n; i++ {
		v := Sample(spec, stream)
		require.GreaterOrEqual(t, v, 48.0)
		require.LessOrEqual(t, v, 192.0)
		sum += v
	}
	assert.InDelta(t, 112.0, sum/float64(n), 2.0)
}

func TestSampleTriangularDegenerate(t *testing.T) {
	spec := carepath.StageSpec{
		Name: "fixed", Kind: carepath.KindTriangular,
		Params: carepath.Params{Min: 3, Mode: 3, Max: 3},
	}
	stream := NewStream(5)
	assert.Equal(t, 3.0, Sample(spec, stream))
}

func TestLogNormalMomentsZeroSigma(t *testing.T) {
	mu, sigma := logNormalMoments(10, 0)
	assert.InDelta(t, 2.302585, mu, 1e-6)
	assert.Zero(t, sigma)
}
