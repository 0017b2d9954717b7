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

package data

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-factor/common"
	"github.com/penny-vault/pv-factor/factor"
	"github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/rs/zerolog/log"
)

// SectorsFromJSON loads a static asset to sector mapping from a JSON object
// of the form {"AAPL": "technology", ...}
func SectorsFromJSON(fn string) (factor.SectorMap, error) {
	raw, err := os.ReadFile(fn)
	if err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not read sector file")
		return nil, err
	}

	sectors := factor.SectorMap{}
	if err := json.Unmarshal(raw, &sectors); err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not parse sector file")
		return nil, err
	}

	return sectors, nil
}

// SectorNamesFromJSON loads a sector code to display name mapping from a JSON
// object of the form {"technology": "Information Technology", ...}
func SectorNamesFromJSON(fn string) (map[string]string, error) {
	raw, err := os.ReadFile(fn)
	if err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not read sector names file")
		return nil, err
	}

	names := map[string]string{}
	if err := json.Unmarshal(raw, &names); err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not parse sector names file")
		return nil, err
	}

	return names, nil
}

// SectorSeriesFromCSV loads a time-varying sector mapping from a long CSV
// with columns date, asset, sector
func SectorSeriesFromCSV(ctx context.Context, fn string) (factor.SectorSeries, error) {
	fh, err := os.Open(fn)
	if err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not open sector series file")
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
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not parse sector series file")
		return nil, err
	}

	dateIdx, err := res.NameToColumn(DateIdx)
	if err != nil {
		return nil, ErrMissingColumn
	}
	assetIdx, err := res.NameToColumn(AssetIdx)
	if err != nil {
		return nil, ErrMissingColumn
	}
	sectorIdx, err := res.NameToColumn(SectorCol)
	if err != nil {
		return nil, ErrMissingColumn
	}

	series := factor.SectorSeries{}

	iterator := res.ValuesIterator(dataframe.ValuesOptions{
		InitialRow:   0,
		Step:         1,
		DontReadLock: true,
	})

	res.Lock()
	defer res.Unlock()

	for {
		row, vals, _ := iterator(dataframe.SeriesIdx)
		if row == nil {
			break
		}

		date, ok := vals[dateIdx].(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedCellType, DateIdx)
		}
		asset, ok := vals[assetIdx].(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedCellType, AssetIdx)
		}
		sector, ok := vals[sectorIdx].(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedCellType, SectorCol)
		}

		series[factor.SectorKey{Date: date, Asset: asset}] = sector
	}

	return series, nil
}
