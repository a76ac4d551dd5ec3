// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, name := range Names() {
		k, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.String())
	}
	k, err := Parse("fft")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknown))
	assert.Equal(t, Invalid, k)
	assert.Equal(t, "invalid", k.String())
}

func TestApply(t *testing.T) {
	a := make([]int32, 4)
	b := make([]int32, 4)
	InitInputs(a, b)
	assert.Equal(t, []int32{0, 1, 2, 3}, a)
	assert.Equal(t, []int32{0, 2, 4, 6}, b)

	c := make([]int32, 4)
	for i := range c {
		VectorAdd.Apply(a, b, c, i)
	}
	assert.Equal(t, []int32{0, 3, 6, 9}, c)

	for i := range c {
		Polynomial.Apply(a, b, c, i)
	}
	// i=1: 2 + 3 - 16 + 160 = 149; i=2: 8 + 24 - 64 + 5120 = 5088.
	assert.Equal(t, []int32{0, 149, 5088, int32(2*9 + 3*27 - 4*36 + 5*7776)}, c)

	for i := range c {
		HeavyCompute.Apply(a, b, c, i)
	}
	for i := range c {
		var want float64
		for j := 0; j < 5; j++ {
			want += math.Sin(float64(i)+float64(j)) * math.Cos(float64(2*i)-float64(j))
		}
		assert.Equal(t, int32(math.Floor(want)), c[i], "heavy_compute_kernel at %d", i)
	}
}

func TestApplyRangeMatchesApply(t *testing.T) {
	const n = 257
	a := make([]int32, n)
	b := make([]int32, n)
	InitInputs(a, b)
	for _, k := range []Kernel{VectorAdd, Polynomial, HeavyCompute} {
		perElement := make([]int32, n)
		for i := range n {
			k.Apply(a, b, perElement, i)
		}
		ranged := make([]int32, n)
		k.ApplyRange(a, b, ranged, 0, 100)
		k.ApplyRange(a, b, ranged, 100, n)
		assert.Equal(t, perElement, ranged, "kernel %s", k)
	}
}

func TestApplyInvalid(t *testing.T) {
	buf := make([]int32, 1)
	assert.Panics(t, func() { Invalid.Apply(buf, buf, buf, 0) })
}
