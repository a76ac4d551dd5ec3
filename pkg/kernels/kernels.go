// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package kernels defines the element-wise numeric workloads measured by the benchmark.
//
// Every kernel reads two input buffers A and B and writes the output buffer C at the same
// index, so a range of indices can be split arbitrarily among workers.
package kernels

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Kernel identifies one of the supported workloads.
type Kernel int

const (
	Invalid Kernel = iota

	// VectorAdd computes C[i] = A[i] + B[i].
	VectorAdd

	// Polynomial computes C[i] = 2a² + 3a³ - 4b² + 5b⁵, evaluated in int64 and narrowed to int32.
	Polynomial

	// HeavyCompute computes C[i] = floor(Σ_{j=0..4} sin(a+j)·cos(b-j)).
	HeavyCompute
)

// Names of the kernels, as used on the command line and as entry points of the device kernel sources.
const (
	VectorAddName    = "vecAdd"
	PolynomialName   = "polynomial_op"
	HeavyComputeName = "heavy_compute_kernel"
)

// ErrUnknown is returned (wrapped) by Parse for names not in the supported set.
var ErrUnknown = errors.New("unknown kernel")

var kernelNames = map[Kernel]string{
	VectorAdd:    VectorAddName,
	Polynomial:   PolynomialName,
	HeavyCompute: HeavyComputeName,
}

// Names returns the names of all supported kernels, in declaration order.
func Names() []string {
	return []string{VectorAddName, PolynomialName, HeavyComputeName}
}

// Parse returns the Kernel with the given name.
func Parse(name string) (Kernel, error) {
	for k, kName := range kernelNames {
		if kName == name {
			return k, nil
		}
	}
	return Invalid, errors.Wrapf(ErrUnknown, "kernel %q is not supported, supported kernels are %s",
		name, strings.Join(Names(), ", "))
}

// String implements fmt.Stringer.
func (k Kernel) String() string {
	if name, found := kernelNames[k]; found {
		return name
	}
	return "invalid"
}

// Apply computes the kernel for index i: it reads a[i] and b[i] and writes c[i].
func (k Kernel) Apply(a, b, c []int32, i int) {
	switch k {
	case VectorAdd:
		c[i] = a[i] + b[i]
	case Polynomial:
		c[i] = polynomial(a[i], b[i])
	case HeavyCompute:
		c[i] = heavyCompute(a[i], b[i])
	default:
		panic(errors.Errorf("kernels.Apply called with invalid kernel %d", int(k)))
	}
}

// ApplyRange computes the kernel for every index in [start, end).
func (k Kernel) ApplyRange(a, b, c []int32, start, end int) {
	switch k {
	case VectorAdd:
		for i := start; i < end; i++ {
			c[i] = a[i] + b[i]
		}
	case Polynomial:
		for i := start; i < end; i++ {
			c[i] = polynomial(a[i], b[i])
		}
	case HeavyCompute:
		for i := start; i < end; i++ {
			c[i] = heavyCompute(a[i], b[i])
		}
	default:
		panic(errors.Errorf("kernels.ApplyRange called with invalid kernel %d", int(k)))
	}
}

func polynomial(aValue, bValue int32) int32 {
	a, b := int64(aValue), int64(bValue)
	a2 := a * a
	a3 := a2 * a
	b2 := b * b
	b4 := b2 * b2
	b5 := b4 * b
	return int32(2*a2 + 3*a3 - 4*b2 + 5*b5)
}

func heavyCompute(aValue, bValue int32) int32 {
	a, b := float64(aValue), float64(bValue)
	var result float64
	for j := range 5 {
		fj := float64(j)
		result += math.Sin(a+fj) * math.Cos(b-fj)
	}
	return int32(math.Floor(result))
}

// InitInputs fills a with a[i]=i and b with b[i]=2i.
//
// Two independently varying inputs keep the compiler from folding a+b into a multiplication.
func InitInputs(a, b []int32) {
	for i := range a {
		a[i] = int32(i)
	}
	for i := range b {
		b[i] = int32(2 * i)
	}
}
