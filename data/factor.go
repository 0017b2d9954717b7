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
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/penny-vault/pv-factor/common"
	pvdf "github.com/penny-vault/pv-factor/dataframe"
	"github.com/penny-vault/pv-factor/dfextras"
	"github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingColumn      = errors.New("required column not found")
	ErrUnexpectedCellType = errors.New("unexpected cell type")
)

// FactorFromCSV loads a long CSV of factor scores with columns
// date, asset, factor into a series keyed by (date, asset). Rows with a
// missing score are dropped and rows are sorted date major.
func FactorFromCSV(ctx context.Context, fn string) (*pvdf.Series, error) {
	fh, err := os.Open(fn)
	if err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not open factor file")
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
			FactorCol: imports.Converter{
				ConcreteType: float64(0),
				ConverterFunc: func(in interface{}) (interface{}, error) {
					v, err := strconv.ParseFloat(in.(string), 64)
					if err != nil {
						return math.NaN(), nil
					}
					return v, nil
				},
			},
		},
	})
	if err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not parse factor file")
		return nil, err
	}

	if _, err := dfextras.DropNA(ctx, res, dataframe.FilterOptions{InPlace: true}); err != nil {
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
	factorIdx, err := res.NameToColumn(FactorCol)
	if err != nil {
		return nil, ErrMissingColumn
	}

	nRows := res.NRows(dataframe.Options{})
	series := &pvdf.Series{
		Name: FactorCol,
		Keys: make([]pvdf.Key, 0, nRows),
		Vals: make([]float64, 0, nRows),
	}

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

		series.Keys = append(series.Keys, pvdf.Key{Date: date, Asset: asset})
		series.Vals = append(series.Vals, dfextras.AsFloat64(vals[factorIdx]))
	}

	return series.SortByKey(), nil
}
