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

// Package data loads pricing, factor, and sector data from local files
package data

import (
	"context"
	"os"
	"time"

	"github.com/penny-vault/pv-factor/common"
	pvdf "github.com/penny-vault/pv-factor/dataframe"
	"github.com/penny-vault/pv-factor/dfextras"
	"github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/rs/zerolog/log"
)

const (
	DateIdx   = "date"
	AssetIdx  = "asset"
	FactorCol = "factor"
	SectorCol = "sector"
)

// PricesFromCSV loads a wide CSV of pricing data - a `date` column plus one
// column per asset - into a dataframe. Dates must be in YYYY-MM-DD format and
// sorted ascending; empty or unparseable price cells become NaN.
func PricesFromCSV(ctx context.Context, fn string) (*pvdf.DataFrame, error) {
	fh, err := os.Open(fn)
	if err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not open price file")
		return nil, err
	}
	defer fh.Close()

	tz := common.GetTimezone()
	res, err := imports.LoadFromCSV(ctx, fh, imports.CSVLoadOptions{
		DictateDataType: map[string]interface{}{
			DateIdx: imports.Converter{
				ConcreteType: time.Time{},
				ConverterFunc: func(in interface{}) (interface{}, error) {
					return time.ParseInLocation("2006-01-02", in.(string), tz)
				},
			},
		},
	})
	if err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not parse price file")
		return nil, err
	}

	return dfextras.ToDataFrame(ctx, res, DateIdx)
}
