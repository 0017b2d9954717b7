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
	"time"
)

// Sectors assigns a sector code to an asset on a given date
type Sectors interface {
	Lookup(date time.Time, asset string) (string, bool)
}

// SectorMap is a static asset to sector mapping; sector membership is assumed
// unchanged for the entire time period of the factor data
type SectorMap map[string]string

func (m SectorMap) Lookup(_ time.Time, asset string) (string, bool) {
	sector, ok := m[asset]
	return sector, ok
}

// SectorKey identifies a single (date, asset) observation in a time-varying
// sector mapping
type SectorKey struct {
	Date  time.Time
	Asset string
}

// SectorSeries is a time-varying sector mapping containing the daily sector
// code for each asset
type SectorSeries map[SectorKey]string

func (ss SectorSeries) Lookup(date time.Time, asset string) (string, bool) {
	sector, ok := ss[SectorKey{Date: date, Asset: asset}]
	return sector, ok
}
