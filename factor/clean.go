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
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/penny-vault/pv-factor/dataframe"
	"github.com/penny-vault/pv-factor/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
)

const FactorCol = "factor"

var (
	ErrAssetsNotInSectorMap = errors.New("assets not in sector mapping")
	ErrSectorsNotInNameMap  = errors.New("sectors not in sector names")
)

// GetCleanFactorAndForwardReturns aligns the factor data, pricing data, and
// sector mappings into a series and panel that share an index of date, asset,
// and (when sectors are provided) sector.
//
// The factor series is keyed by (date, asset) and contains the values of a
// single alpha factor. Prices are a wide dataframe of assets by date; pass
// pricing appropriate for the time of day the signal was generated to avoid
// lookahead bias. Pricing data must span the factor time period plus a buffer
// window greater than the largest holding period.
//
// When a static SectorMap is passed it must cover every asset in the factor;
// sectorNames, when given, must cover every sector code - both are validated
// before any merge and the returned error names the offending keys.
//
// Rows with any missing value are dropped. The returned factor and forward
// return panel are index aligned and contain no NaN; their key set is a
// subset of the input factor's keys.
func GetCleanFactorAndForwardReturns(ctx context.Context, factor *dataframe.Series, prices *dataframe.DataFrame, sectors Sectors, days []int, filterZscore float64, sectorNames map[string]string) (*dataframe.Series, *dataframe.Panel, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "factor.GetCleanFactorAndForwardReturns")
	defer span.End()

	factor = factor.Copy()
	factor.Name = FactorCol

	var (
		labels []string
		found  []bool
	)

	if sectors != nil {
		// a static sector map must cover every asset in the factor
		if sectorMap, ok := sectors.(SectorMap); ok {
			missing := []string{}
			for _, asset := range factor.Assets() {
				if _, ok := sectorMap[asset]; !ok {
					missing = append(missing, asset)
				}
			}
			if len(missing) > 0 {
				sort.Strings(missing)
				log.Error().Strs("Assets", missing).Msg("factor assets are missing from the sector mapping")
				return nil, nil, fmt.Errorf("%w: %s", ErrAssetsNotInSectorMap, strings.Join(missing, ", "))
			}
		}

		// resolve a sector label for every factor row; rows without a label
		// are treated as missing data and dropped after the merge
		labels = make([]string, len(factor.Keys))
		found = make([]bool, len(factor.Keys))
		codes := make(map[string]bool)
		for idx, key := range factor.Keys {
			if sector, ok := sectors.Lookup(key.Date, key.Asset); ok {
				labels[idx] = sector
				found[idx] = true
				codes[sector] = true
			}
		}

		if sectorNames != nil {
			missing := []string{}
			for code := range codes {
				if _, ok := sectorNames[code]; !ok {
					missing = append(missing, code)
				}
			}
			if len(missing) > 0 {
				sort.Strings(missing)
				log.Error().Strs("Sectors", missing).Msg("sector codes are missing from the sector names mapping")
				return nil, nil, fmt.Errorf("%w: %s", ErrSectorsNotInNameMap, strings.Join(missing, ", "))
			}

			for idx := range labels {
				if found[idx] {
					labels[idx] = sectorNames[labels[idx]]
				}
			}
		}
	}

	forwardReturns, err := ComputeForwardReturns(ctx, prices, days, filterZscore)
	if err != nil {
		return nil, nil, err
	}

	merged := factor.Panel().LeftJoin(forwardReturns)

	if sectors != nil {
		// promote sector to a key level
		for idx := range merged.Keys {
			merged.Keys[idx].Sector = labels[idx]
		}
		merged = merged.Filter(func(rowIdx int, _ dataframe.Key) bool {
			return found[rowIdx]
		})
	}

	merged.DropNA()

	cleanFactor, err := merged.Pop(FactorCol)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not split factor out of merged data")
		return nil, nil, err
	}

	return cleanFactor, merged, nil
}
