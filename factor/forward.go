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

// Package factor prepares pricing, factor, and sector data for alpha factor
// analysis. All functions are pure transforms; inputs are never modified.
package factor

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/penny-vault/pv-factor/dataframe"
	"github.com/penny-vault/pv-factor/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
)

var (
	ErrNoHoldingPeriods       = errors.New("at least one holding period is required")
	ErrInvalidHoldingPeriod   = errors.New("holding periods must be greater than 0")
	ErrDuplicateHoldingPeriod = errors.New("holding periods must be distinct")
)

// ComputeForwardReturns finds the N day forward returns (as percent change)
// for each asset in prices. Prices must span the factor analysis time period
// plus a buffer window greater than the largest requested holding period; the
// last `day` rows of each column are NaN because no future price is
// available. Returns are divided by the holding period so each column is a
// per-day rate.
//
// When filterZscore is greater than zero, returns more than filterZscore
// standard deviations from the column mean are set to NaN.
// CAUTION: this outlier filtering incorporates lookahead bias.
//
// The result is a panel keyed by (date, asset) with one column per holding
// period, named for the number of days.
func ComputeForwardReturns(ctx context.Context, prices *dataframe.DataFrame, days []int, filterZscore float64) (*dataframe.Panel, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "factor.ComputeForwardReturns")
	defer span.End()

	if len(days) == 0 {
		return nil, ErrNoHoldingPeriods
	}

	seen := make(map[int]bool, len(days))
	for _, day := range days {
		if day <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidHoldingPeriod, day)
		}
		if seen[day] {
			return nil, fmt.Errorf("%w: %d appears more than once", ErrDuplicateHoldingPeriod, day)
		}
		seen[day] = true
	}

	series := make([]*dataframe.Series, 0, len(days))
	for _, day := range days {
		delta := prices.PctChange(day).Shift(-day)

		if filterZscore > 0 {
			delta = delta.ZScoreFilter(filterZscore)
		}

		delta = delta.MulScalar(1.0 / float64(day))
		series = append(series, delta.Stack(strconv.Itoa(day)))
	}

	forwardReturns, err := dataframe.PanelFromSeries(series...)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not combine forward return columns")
		return nil, err
	}

	return forwardReturns, nil
}
