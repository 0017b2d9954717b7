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

package factor

import (
	"math"
	"time"

	"github.com/penny-vault/pv-factor/dataframe"
	"gonum.org/v1/gonum/stat"
)

// DemeanForwardReturns converts forward returns to returns relative to the
// mean daily all-universe or sector return. Sector-wise normalization
// incorporates the assumption of a sector neutral portfolio constraint and
// thus allows the factor to be evaluated across sectors.
//
// For example, if AAPL's 5 day return is 0.1% and the mean 5 day return for
// Technology stocks in the universe was 0.5% in the same period, the sector
// adjusted 5 day return for AAPL in this period is -0.4%.
//
// The returned panel has the same keys and columns as the input; NaN values
// are excluded from the group means and remain NaN in the output.
func DemeanForwardReturns(forwardReturns *dataframe.Panel, bySector bool) *dataframe.Panel {
	type group struct {
		date   time.Time
		sector string
	}

	groups := make(map[group][]int, len(forwardReturns.Keys))
	order := make([]group, 0, len(forwardReturns.Keys))
	for idx, key := range forwardReturns.Keys {
		g := group{date: key.Date}
		if bySector {
			g.sector = key.Sector
		}
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], idx)
	}

	demeaned := forwardReturns.Copy()
	for colIdx := range demeaned.Vals {
		for _, g := range order {
			rows := groups[g]

			obs := make([]float64, 0, len(rows))
			for _, rowIdx := range rows {
				if v := demeaned.Vals[colIdx][rowIdx]; !math.IsNaN(v) {
					obs = append(obs, v)
				}
			}

			if len(obs) == 0 {
				continue
			}

			mean := stat.Mean(obs, nil)
			for _, rowIdx := range rows {
				demeaned.Vals[colIdx][rowIdx] -= mean
			}
		}
	}

	return demeaned
}
