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
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Assets returns the unique set of assets referenced by the series keys
func (s *Series) Assets() []string {
	seen := make(map[string]bool, len(s.Keys))
	assets := make([]string, 0, len(s.Keys))

	for _, key := range s.Keys {
		if !seen[key.Asset] {
			seen[key.Asset] = true
			assets = append(assets, key.Asset)
		}
	}

	return assets
}

// Copy creates a copy of the series
func (s *Series) Copy() *Series {
	s2 := &Series{
		Name: s.Name,
		Keys: make([]Key, len(s.Keys)),
		Vals: make([]float64, len(s.Vals)),
	}

	copy(s2.Keys, s.Keys)
	copy(s2.Vals, s.Vals)
	return s2
}

// Len returns the number of rows in the series
func (s *Series) Len() int {
	return len(s.Keys)
}

// Panel converts the series into a single column panel
func (s *Series) Panel() *Panel {
	return &Panel{
		Keys:     s.Keys,
		ColNames: []string{s.Name},
		Vals:     [][]float64{s.Vals},
	}
}

// SortByKey sorts the series rows date major, then by asset, then by sector
func (s *Series) SortByKey() *Series {
	perm := make([]int, len(s.Keys))
	for idx := range perm {
		perm[idx] = idx
	}

	sort.SliceStable(perm, func(i, j int) bool {
		a := s.Keys[perm[i]]
		b := s.Keys[perm[j]]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Asset != b.Asset {
			return a.Asset < b.Asset
		}
		return a.Sector < b.Sector
	})

	newKeys := make([]Key, len(s.Keys))
	newVals := make([]float64, len(s.Vals))
	for newIdx, oldIdx := range perm {
		newKeys[newIdx] = s.Keys[oldIdx]
		newVals[newIdx] = s.Vals[oldIdx]
	}

	s.Keys = newKeys
	s.Vals = newVals
	return s
}

// Table prints an ASCII formatted table to stdout. An optional format string
// overrides the default %.4f float formatting.
func (s *Series) Table(floatFmt ...string) string {
	if len(s.Keys) == 0 {
		return "<NO DATA>"
	}

	valueFmt := "%.4f"
	if len(floatFmt) > 0 {
		valueFmt = floatFmt[0]
	}

	name := s.Name
	if name == "" {
		name = "Value"
	}

	hasSector := false
	for _, key := range s.Keys {
		if key.Sector != "" {
			hasSector = true
			break
		}
	}

	tableCols := []string{"Date", "Asset"}
	if hasSector {
		tableCols = append(tableCols, "Sector")
	}
	tableCols = append(tableCols, name)

	sb := &strings.Builder{}
	table := tablewriter.NewWriter(sb)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	footer[1] = fmt.Sprintf("%d", s.Len())
	table.SetFooter(footer)
	table.SetBorder(false)

	for idx, key := range s.Keys {
		row := make([]string, 0, len(tableCols))
		row = append(row, key.Date.Format("2006-01-02"), key.Asset)
		if hasSector {
			row = append(row, key.Sector)
		}
		row = append(row, fmt.Sprintf(valueFmt, s.Vals[idx]))
		table.Append(row)
	}

	table.Render()
	return sb.String()
}
