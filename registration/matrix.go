// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package registration

import (
	"fmt"
	"strings"
)

// Matrix is a 4x4 homogeneous transformation stored in row-major order, the layout of Frame of
// Reference Transformation Matrix (3006,00C6).
type Matrix [16]float64

// Identity returns the identity matrix
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// At returns the element at row i and column j
func (m Matrix) At(i, j int) float64 {
	return m[4*i+j]
}

// Mul returns the product m × o
func (m Matrix) Mul(o Matrix) Matrix {
	var out Matrix
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[4*i+k] * o[4*k+j]
			}
			out[4*i+j] = sum
		}
	}
	return out
}

// Apply transforms the point p
func (m Matrix) Apply(p [3]float64) [3]float64 {
	var out [4]float64
	for i := 0; i < 4; i++ {
		out[i] = m[4*i]*p[0] + m[4*i+1]*p[1] + m[4*i+2]*p[2] + m[4*i+3]
	}
	if out[3] != 0 && out[3] != 1 {
		return [3]float64{out[0] / out[3], out[1] / out[3], out[2] / out[3]}
	}
	return [3]float64{out[0], out[1], out[2]}
}

func (m Matrix) String() string {
	rows := make([]string, 4)
	for i := range rows {
		rows[i] = fmt.Sprintf("[%g %g %g %g]", m[4*i], m[4*i+1], m[4*i+2], m[4*i+3])
	}
	return strings.Join(rows, "\n")
}
