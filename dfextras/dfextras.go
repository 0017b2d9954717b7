package dfextras

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rocketlaunchr/dataframe-go"

	pvdf "github.com/penny-vault/pv-factor/dataframe"
)

// Collection of helpers that bridge dataframe-go frames (used for file
// import) and the in-house dataframe types

var (
	ErrNotSeriesOrDataFrame = errors.New("sdf must be a Series or DataFrame")
	ErrDateColumnNotFound   = errors.New("date column not found")
	ErrUnexpectedCellType   = errors.New("unexpected cell type")
)

// DropNA remove rows in the series or dataframe that have NA's
func DropNA(ctx context.Context, sdf interface{}, opts ...dataframe.FilterOptions) (interface{}, error) {
	switch sdf.(type) {
	case dataframe.Series:
		filterFn := dataframe.FilterSeriesFn(func(val interface{}, row, nRows int) (dataframe.FilterAction, error) {
			if val == nil {
				return dataframe.DROP, nil
			}
			if v, ok := val.(float64); ok {
				if math.IsNaN(v) {
					return dataframe.DROP, nil
				}
			}
			return dataframe.KEEP, nil
		})
		res, err := dataframe.Filter(ctx, sdf, filterFn, opts...)
		return res, err
	case *dataframe.DataFrame:
		filterFn := dataframe.FilterDataFrameFn(func(vals map[interface{}]interface{}, row, nRows int) (dataframe.FilterAction, error) {
			for _, val := range vals {
				if val == nil {
					return dataframe.DROP, nil
				}
				if v, ok := val.(float64); ok {
					if math.IsNaN(v) {
						return dataframe.DROP, nil
					}
				}
			}
			return dataframe.KEEP, nil
		})
		res, err := dataframe.Filter(ctx, sdf, filterFn, opts...)
		return res, err
	default:
		return nil, ErrNotSeriesOrDataFrame
	}
}

// AsFloat64 coerces a single dataframe-go cell value to float64; nil and
// unparseable strings become NaN
func AsFloat64(val interface{}) float64 {
	switch v := val.(type) {
	case nil:
		return math.NaN()
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// ToDataFrame converts a dataframe-go dataframe into the in-house wide
// DataFrame. The named date column becomes the date index and every other
// column is coerced to float64 with AsFloat64. Row order is preserved.
func ToDataFrame(ctx context.Context, df *dataframe.DataFrame, dateCol string) (*pvdf.DataFrame, error) {
	dateIdx, err := df.NameToColumn(dateCol)
	if err != nil {
		return nil, ErrDateColumnNotFound
	}

	nRows := df.NRows(dataframe.Options{})
	res := &pvdf.DataFrame{
		Dates:    make([]time.Time, 0, nRows),
		ColNames: make([]string, 0, len(df.Series)-1),
		Vals:     make([][]float64, 0, len(df.Series)-1),
	}

	for colIdx, series := range df.Series {
		if colIdx == dateIdx {
			continue
		}
		res.ColNames = append(res.ColNames, series.Name(dataframe.Options{}))
		res.Vals = append(res.Vals, make([]float64, 0, nRows))
	}

	iterator := df.ValuesIterator(dataframe.ValuesOptions{
		InitialRow:   0,
		Step:         1,
		DontReadLock: true,
	})

	df.Lock()
	defer df.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, vals, _ := iterator(dataframe.SeriesIdx)
		if row == nil {
			break
		}

		date, ok := vals[dateIdx].(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedCellType, dateCol)
		}
		res.Dates = append(res.Dates, date)

		outCol := 0
		for colIdx := range df.Series {
			if colIdx == dateIdx {
				continue
			}
			res.Vals[outCol] = append(res.Vals[outCol], AsFloat64(vals[colIdx]))
			outCol++
		}
	}

	return res, nil
}
