// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package random makes experiments reproducible by seeding every random
// generator a run draws from with one call.
//
// Example usage:
//
//	import "github.com/born-ml/expkit/random"
//
//	random.Seed(42)
//	noise := random.Array().Normal(16, 0, 1)
//	order := random.General().Perm(len(examples))
//
// Code that needs randomness should draw from General, Array or the tensor
// package generators; the global math/rand functions are not affected.
package random

import (
	"math/rand/v2"

	"github.com/born-ml/expkit/internal/random"
)

// ArrayRNG draws numeric arrays from probability distributions.
type ArrayRNG = random.ArrayRNG

// Seed seeds the numeric-array generator, the general-purpose generator, the
// CPU tensor generator and, when an accelerator is available, every
// accelerator generator. It also selects deterministic kernels.
func Seed(seed int64) {
	random.Seed(seed)
}

// SeedDefault is Seed(0).
func SeedDefault() {
	random.SeedDefault()
}

// General returns the process-wide general-purpose generator.
func General() *rand.Rand {
	return random.General()
}

// Array returns the process-wide numeric-array generator.
func Array() *ArrayRNG {
	return random.Array()
}
