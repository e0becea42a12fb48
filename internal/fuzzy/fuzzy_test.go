package fuzzy

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "converge", b: "converge", want: 100},
		{name: "both empty", a: "", b: "", want: 100},
		{name: "one empty", a: "converge", b: "", want: 0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0},
		{name: "trailing punctuation", a: "this is a test", b: "this is a test!", want: 2800.0 / 29},
		{name: "missing space", a: "middle east", b: "middleeast", want: 2000.0 / 21},
		{name: "multibyte runes count once", a: "café", b: "cafe", want: 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 0.001)
		})
	}
}

func TestAtLeast(t *testing.T) {
	assert.True(t, AtLeast("converge", "converge", 100))
	assert.True(t, AtLeast("the sinclair", "sinclair", 80))
	assert.False(t, AtLeast("royale", "sally obriens", 80))
	assert.False(t, AtLeast("kenny wayne shepherd", "kenny wayne shepherd ledbetter heights 30th anniversary tour", 80))
}

func TestRatioProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("ratio is symmetric", prop.ForAll(
		func(a, b string) bool {
			return Ratio(a, b) == Ratio(b, a)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("ratio stays within 0..100", prop.ForAll(
		func(a, b string) bool {
			r := Ratio(a, b)
			return r >= 0 && r <= 100
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("a string is identical to itself", prop.ForAll(
		func(a string) bool {
			return Ratio(a, a) == 100
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
