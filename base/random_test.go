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
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestRandomGenerator_Permute(t *testing.T) {
	values := lo.Range(100)
	a := NewRandomGenerator(42).Permute(values)
	b := NewRandomGenerator(42).Permute(values)
	assert.Equal(t, a, b)
	assert.ElementsMatch(t, values, a)
	// input is not modified
	assert.Equal(t, lo.Range(100), values)
	// different seed
	c := NewRandomGenerator(7).Permute(values)
	assert.NotEqual(t, a, c)
}

func TestCeilRatio(t *testing.T) {
	assert.Equal(t, 40, CeilRatio(100, 4, 10))
	assert.Equal(t, 4, CeilRatio(10, 4, 10))
	assert.Equal(t, 2, CeilRatio(3, 4, 10))
	assert.Equal(t, 1, CeilRatio(1, 1, 2))
	assert.Equal(t, 0, CeilRatio(0, 1, 2))
	assert.Panics(t, func() { CeilRatio(1, 1, 0) })
}
