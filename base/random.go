// Copyright 2020 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"math/rand"
	"slices"
)

// RandomGenerator is the random generator for dataset preparation.
type RandomGenerator struct {
	*rand.Rand
}

// NewRandomGenerator creates a RandomGenerator.
func NewRandomGenerator(seed int64) RandomGenerator {
	return RandomGenerator{rand.New(rand.NewSource(seed))}
}

// Permute returns a shuffled copy of values. The input is left untouched.
func (rng RandomGenerator) Permute(values []int) []int {
	ret := slices.Clone(values)
	rng.Shuffle(len(ret), func(i, j int) {
		ret[i], ret[j] = ret[j], ret[i]
	})
	return ret
}

// CeilRatio returns ceil(n * num / den) without floating point rounding.
func CeilRatio(n, num, den int) int {
	if den <= 0 {
		panic("denominator must be positive")
	}
	return (n*num + den - 1) / den
}
