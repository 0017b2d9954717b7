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
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Stack converts the wide dataframe into a long-form series keyed by
// (date, asset). Rows are emitted date major - all assets for the first date,
// then all assets for the second date, and so on. NaN values are preserved.
func (df *DataFrame) Stack(name string) *Series {
	s := &Series{
		Name: name,
		Keys: make([]Key, 0, len(df.Dates)*len(df.ColNames)),
		Vals: make([]float64, 0, len(df.Dates)*len(df.ColNames)),
	}

	for rowIdx, date := range df.Dates {
		for colIdx, asset := range df.ColNames {
			s.Keys = append(s.Keys, Key{Date: date, Asset: asset})
			s.Vals = append(s.Vals, df.Vals[colIdx][rowIdx])
		}
	}

	return s
}

// PanelFromSeries merges multiple series that share an identical key set into
// a single panel with one column per series
func PanelFromSeries(series ...*Series) (*Panel, error) {
	p := &Panel{}
	first := true
	for _, s := range series {
		if first {
			p.Keys = s.Keys
			p.ColNames = []string{s.Name}
			p.Vals = [][]float64{s.Vals}
			first = false
			continue
		}

		if len(s.Keys) != len(p.Keys) {
			return nil, ErrDateIndexNotAligned
		}
		for idx, key := range s.Keys {
			if key != p.Keys[idx] {
				return nil, ErrDateIndexNotAligned
			}
		}

		p.ColNames = append(p.ColNames, s.Name)
		p.Vals = append(p.Vals, s.Vals)
	}

	return p, nil
}

// ColIndex returns the index of the specified column; returns -1 if column doesn't exist
func (p *Panel) ColIndex(colName string) int {
	for idx, val := range p.ColNames {
		if colName == val {
			return idx
		}
	}

	return -1
}

// ColCount returns the number of columns in the panel
func (p *Panel) ColCount() int {
	return len(p.ColNames)
}

// Copy creates a copy of the panel
func (p *Panel) Copy() *Panel {
	p2 := &Panel{
		Keys:     make([]Key, len(p.Keys)),
		ColNames: make([]string, len(p.ColNames)),
		Vals:     make([][]float64, len(p.Vals)),
	}

	copy(p2.Keys, p.Keys)
	copy(p2.ColNames, p.ColNames)

	for idx := range p2.Vals {
		p2.Vals[idx] = make([]float64, len(p.Vals[idx]))
		copy(p2.Vals[idx], p.Vals[idx])
	}

	return p2
}

// DropNA removes rows that contain a NaN in any column
func (p *Panel) DropNA() *Panel {
	newKeys := make([]Key, 0, len(p.Keys))
	newVals := make([][]float64, len(p.Vals))

	for idx, key := range p.Keys {
		keep := true
		for _, col := range p.Vals {
			if math.IsNaN(col[idx]) {
				keep = false
				break
			}
		}

		if keep {
			newKeys = append(newKeys, key)
			for colIdx, col := range p.Vals {
				newVals[colIdx] = append(newVals[colIdx], col[idx])
			}
		}
	}

	p.Keys = newKeys
	p.Vals = newVals
	return p
}

// Filter creates a new panel containing only the rows where the keep lambda
// returns true
func (p *Panel) Filter(keep func(rowIdx int, key Key) bool) *Panel {
	newKeys := make([]Key, 0, len(p.Keys))
	newVals := make([][]float64, len(p.Vals))

	for idx, key := range p.Keys {
		if keep(idx, key) {
			newKeys = append(newKeys, key)
			for colIdx, col := range p.Vals {
				newVals[colIdx] = append(newVals[colIdx], col[idx])
			}
		}
	}

	return &Panel{
		Keys:     newKeys,
		ColNames: p.ColNames,
		Vals:     newVals,
	}
}

// Insert a new column to the end of the panel
func (p *Panel) Insert(name string, col []float64) *Panel {
	p.ColNames = append(p.ColNames, name)
	p.Vals = append(p.Vals, col)
	return p
}

// LeftJoin merges other into p on (date, asset), keeping every row of p. The
// sector portion of the key is ignored when matching. Rows match when they
// name the same asset and instant; the timezone the date was constructed in
// does not matter. Columns of other that have no matching row are filled with
// NaN. Returns a new panel.
func (p *Panel) LeftJoin(other *Panel) *Panel {
	type dateAsset struct {
		date  int64
		asset string
	}

	rowMap := make(map[dateAsset]int, len(other.Keys))
	for idx, key := range other.Keys {
		rowMap[dateAsset{date: key.Date.UnixNano(), asset: key.Asset}] = idx
	}

	joined := p.Copy()
	joined.ColNames = append(joined.ColNames, other.ColNames...)

	for colIdx := range other.Vals {
		col := make([]float64, len(p.Keys))
		for rowIdx, key := range p.Keys {
			if otherIdx, ok := rowMap[dateAsset{date: key.Date.UnixNano(), asset: key.Asset}]; ok {
				col[rowIdx] = other.Vals[colIdx][otherIdx]
			} else {
				col[rowIdx] = math.NaN()
			}
		}
		joined.Vals = append(joined.Vals, col)
	}

	return joined
}

// Len returns the number of rows in the panel
func (p *Panel) Len() int {
	return len(p.Keys)
}

// Pop removes the named column from the panel and returns it as a series
// sharing the panel's keys
func (p *Panel) Pop(colName string) (*Series, error) {
	colIdx := p.ColIndex(colName)
	if colIdx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, colName)
	}

	s := &Series{
		Name: colName,
		Keys: p.Keys,
		Vals: p.Vals[colIdx],
	}

	p.ColNames = append(p.ColNames[:colIdx], p.ColNames[colIdx+1:]...)
	p.Vals = append(p.Vals[:colIdx], p.Vals[colIdx+1:]...)

	return s, nil
}

// SortByKey sorts the panel rows date major, then by asset, then by sector
func (p *Panel) SortByKey() *Panel {
	perm := make([]int, len(p.Keys))
	for idx := range perm {
		perm[idx] = idx
	}

	sort.SliceStable(perm, func(i, j int) bool {
		a := p.Keys[perm[i]]
		b := p.Keys[perm[j]]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Asset != b.Asset {
			return a.Asset < b.Asset
		}
		return a.Sector < b.Sector
	})

	newKeys := make([]Key, len(p.Keys))
	newVals := make([][]float64, len(p.Vals))
	for colIdx := range newVals {
		newVals[colIdx] = make([]float64, len(p.Vals[colIdx]))
	}

	for newIdx, oldIdx := range perm {
		newKeys[newIdx] = p.Keys[oldIdx]
		for colIdx := range p.Vals {
			newVals[colIdx][newIdx] = p.Vals[colIdx][oldIdx]
		}
	}

	p.Keys = newKeys
	p.Vals = newVals
	return p
}

// Table prints an ASCII formatted table to stdout. An optional format string
// overrides the default %.4f float formatting.
func (p *Panel) Table(floatFmt ...string) string {
	if len(p.Keys) == 0 {
		return "<NO DATA>"
	}

	valueFmt := "%.4f"
	if len(floatFmt) > 0 {
		valueFmt = floatFmt[0]
	}

	hasSector := false
	for _, key := range p.Keys {
		if key.Sector != "" {
			hasSector = true
			break
		}
	}

	tableCols := []string{"Date", "Asset"}
	if hasSector {
		tableCols = append(tableCols, "Sector")
	}
	tableCols = append(tableCols, p.ColNames...)

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	footer[1] = fmt.Sprintf("%d", p.Len())
	table.SetFooter(footer)
	table.SetBorder(false)

	for idx, key := range p.Keys {
		row := make([]string, 0, len(tableCols))
		row = append(row, key.Date.Format("2006-01-02"), key.Asset)
		if hasSector {
			row = append(row, key.Sector)
		}

		for _, col := range p.Vals {
			row = append(row, fmt.Sprintf(valueFmt, col[idx]))
		}

		table.Append(row)
	}

	table.Render()
	return s.String()
}
