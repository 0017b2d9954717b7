// Copyright 2022-2023
// SPDX-License-Identifier: Apache-2.0
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

package dataframe

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AddScalar adds the scalar value to all columns in dataframe df and returns a new dataframe
func (df *DataFrame) AddScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		floats.AddConst(scalar, df.Vals[colIdx])
	}
	return df
}

// MulScalar multiplies all columns in dataframe df by the scalar and returns a new dataframe
func (df *DataFrame) MulScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		floats.Scale(scalar, df.Vals[colIdx])
	}
	return df
}

// PctChange computes the percent change between the current row and the row
// `periods` rows earlier for every column. The first `periods` rows of the
// result are NaN. Returns a new dataframe.
func (df *DataFrame) PctChange(periods int) *DataFrame {
	df2 := df.Copy()

	for colIdx := range df.Vals {
		for rowIdx := range df.Vals[colIdx] {
			if rowIdx < periods {
				df2.Vals[colIdx][rowIdx] = math.NaN()
				continue
			}
			prev := df.Vals[colIdx][rowIdx-periods]
			df2.Vals[colIdx][rowIdx] = (df.Vals[colIdx][rowIdx] - prev) / prev
		}
	}

	return df2
}

// Shift moves all values by n rows keeping the date index fixed. A positive n
// shifts values forward in time (lag), a negative n shifts values backward
// (lead). Vacated rows are filled with NaN. Returns a new dataframe.
func (df *DataFrame) Shift(n int) *DataFrame {
	df2 := df.Copy()

	for colIdx := range df.Vals {
		for rowIdx := range df.Vals[colIdx] {
			srcIdx := rowIdx - n
			if srcIdx < 0 || srcIdx >= len(df.Vals[colIdx]) {
				df2.Vals[colIdx][rowIdx] = math.NaN()
			} else {
				df2.Vals[colIdx][rowIdx] = df.Vals[colIdx][srcIdx]
			}
		}
	}

	return df2
}

// ZScoreFilter sets values more than zscore standard deviations away from the
// column mean to NaN and returns a new dataframe. Mean and standard deviation
// are computed over the full column, ignoring NaN.
//
// CAUTION: because the statistics include every row, filtering a forward
// looking column incorporates lookahead bias.
func (df *DataFrame) ZScoreFilter(zscore float64) *DataFrame {
	df2 := df.Copy()

	for colIdx := range df.Vals {
		obs := make([]float64, 0, len(df.Vals[colIdx]))
		for _, v := range df.Vals[colIdx] {
			if !math.IsNaN(v) {
				obs = append(obs, v)
			}
		}

		if len(obs) < 2 {
			continue
		}

		mean, std := stat.MeanStdDev(obs, nil)
		for rowIdx, v := range df.Vals[colIdx] {
			if math.Abs(v-mean) > (zscore * std) {
				df2.Vals[colIdx][rowIdx] = math.NaN()
			}
		}
	}

	return df2
}
