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
	"errors"
	"time"
)

// DataFrame stores a wide table of values organized by date;
// assets are columns and the vals array is column major - e.g.,
// VFINX  PRIDX
// 1      4
// 2      5
// 3      6
//
// Vals[0][0] = 1
// Vals[0][1] = 2
//
// missing values are stored as math.NaN()
type DataFrame struct {
	Dates    []time.Time
	ColNames []string
	Vals     [][]float64
}

// Key is the composite row key of a long-form table: date, asset and an
// optional sector label. Sector is the empty string when the table does not
// carry sector information.
type Key struct {
	Date   time.Time
	Asset  string
	Sector string
}

// Panel is a long-form table keyed by (date, asset[, sector]) with one or
// more named value columns. Like DataFrame, vals are column major and NaN
// marks a missing value.
type Panel struct {
	Keys     []Key
	ColNames []string
	Vals     [][]float64
}

// Series is a long-form single column keyed by (date, asset[, sector])
type Series struct {
	Name string
	Keys []Key
	Vals []float64
}

var (
	ErrDateIndexNotAligned = errors.New("date index does not align")
	ErrColumnNotFound      = errors.New("column not found")
)
