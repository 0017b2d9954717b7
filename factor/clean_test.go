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

package factor_test

import (
	"context"
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-factor/dataframe"
	"github.com/penny-vault/pv-factor/factor"
)

var _ = Describe("GetCleanFactorAndForwardReturns", func() {
	var (
		ctx          context.Context
		prices       *dataframe.DataFrame
		factorSeries *dataframe.Series
		sectors      factor.SectorMap
	)

	BeforeEach(func() {
		ctx = context.Background()
		prices = buildPrices(10, []string{"AAPL", "MSFT", "XOM"}, func(asset string, day int) float64 {
			switch asset {
			case "AAPL":
				return 100.0 + float64(day)
			case "MSFT":
				return 200.0 + 3.0*float64(day)
			default:
				return 50.0 + 0.5*float64(day)
			}
		})

		// factor scores for the first 5 dates
		factorSeries = &dataframe.Series{
			Name: "myFactor",
			Keys: make([]dataframe.Key, 0, 15),
			Vals: make([]float64, 0, 15),
		}
		score := 0.0
		for _, dt := range prices.Dates[:5] {
			for _, asset := range []string{"AAPL", "MSFT", "XOM"} {
				factorSeries.Keys = append(factorSeries.Keys, dataframe.Key{Date: dt, Asset: asset})
				factorSeries.Vals = append(factorSeries.Vals, score)
				score += 0.1
			}
		}

		sectors = factor.SectorMap{
			"AAPL": "tech",
			"MSFT": "tech",
			"XOM":  "energy",
		}
	})

	Context("without sectors", func() {
		It("contains no missing values", func() {
			cleanFactor, fwd, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, nil, []int{1, 5}, 0, nil)
			Expect(err).To(BeNil())

			for _, v := range cleanFactor.Vals {
				Expect(math.IsNaN(v)).To(BeFalse())
			}
			for _, col := range fwd.Vals {
				for _, v := range col {
					Expect(math.IsNaN(v)).To(BeFalse())
				}
			}
		})

		It("keys are a subset of the factor keys", func() {
			cleanFactor, fwd, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, nil, []int{1, 5}, 0, nil)
			Expect(err).To(BeNil())

			factorKeys := make(map[dataframe.Key]bool, factorSeries.Len())
			for _, key := range factorSeries.Keys {
				factorKeys[key] = true
			}

			Expect(cleanFactor.Len()).To(BeNumerically(">", 0))
			Expect(cleanFactor.Len()).To(Equal(fwd.Len()))
			for _, key := range cleanFactor.Keys {
				Expect(factorKeys[key]).To(BeTrue())
			}
		})

		It("round-trips the factor values for surviving keys", func() {
			cleanFactor, _, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, nil, []int{1, 5}, 0, nil)
			Expect(err).To(BeNil())

			original := make(map[dataframe.Key]float64, factorSeries.Len())
			for idx, key := range factorSeries.Keys {
				original[key] = factorSeries.Vals[idx]
			}

			for idx, key := range cleanFactor.Keys {
				Expect(cleanFactor.Vals[idx]).To(BeNumerically("==", original[key]))
			}
		})

		It("aligns the factor and forward return indexes", func() {
			cleanFactor, fwd, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, nil, []int{1}, 0, nil)
			Expect(err).To(BeNil())
			Expect(cleanFactor.Keys).To(Equal(fwd.Keys))
		})

		It("does not rename the caller's series", func() {
			_, _, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, nil, []int{1}, 0, nil)
			Expect(err).To(BeNil())
			Expect(factorSeries.Name).To(Equal("myFactor"))
		})
	})

	Context("with a static sector map", func() {
		It("promotes sector to a key level", func() {
			cleanFactor, _, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, sectors, []int{1}, 0, nil)
			Expect(err).To(BeNil())

			for _, key := range cleanFactor.Keys {
				switch key.Asset {
				case "XOM":
					Expect(key.Sector).To(Equal("energy"))
				default:
					Expect(key.Sector).To(Equal("tech"))
				}
			}
		})

		It("errors when an asset is missing from the sector map", func() {
			delete(sectors, "XOM")
			_, _, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, sectors, []int{1}, 0, nil)
			Expect(err).To(MatchError(factor.ErrAssetsNotInSectorMap))
			Expect(err.Error()).To(ContainSubstring("XOM"))
		})

		It("applies sector display names", func() {
			sectorNames := map[string]string{
				"tech":   "Information Technology",
				"energy": "Energy",
			}
			cleanFactor, _, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, sectors, []int{1}, 0, sectorNames)
			Expect(err).To(BeNil())

			for _, key := range cleanFactor.Keys {
				Expect(key.Sector).To(BeElementOf("Information Technology", "Energy"))
			}
		})

		It("errors when a sector code is missing from sector names", func() {
			sectorNames := map[string]string{
				"tech": "Information Technology",
			}
			_, _, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, sectors, []int{1}, 0, sectorNames)
			Expect(err).To(MatchError(factor.ErrSectorsNotInNameMap))
			Expect(err.Error()).To(ContainSubstring("energy"))
		})

		It("lists every missing asset in the error", func() {
			delete(sectors, "XOM")
			delete(sectors, "AAPL")
			_, _, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, sectors, []int{1}, 0, nil)
			Expect(err).To(MatchError(factor.ErrAssetsNotInSectorMap))
			Expect(strings.Index(err.Error(), "AAPL")).To(BeNumerically("<", strings.Index(err.Error(), "XOM")))
		})
	})

	Context("with a time-varying sector series", func() {
		It("labels rows with the sector in effect on each date", func() {
			sectorSeries := factor.SectorSeries{}
			for _, dt := range prices.Dates[:5] {
				for asset, sector := range sectors {
					sectorSeries[factor.SectorKey{Date: dt, Asset: asset}] = sector
				}
			}
			// XOM reclassified on the third date
			sectorSeries[factor.SectorKey{Date: prices.Dates[2], Asset: "XOM"}] = "utilities"

			cleanFactor, _, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, sectorSeries, []int{1}, 0, nil)
			Expect(err).To(BeNil())

			for _, key := range cleanFactor.Keys {
				if key.Asset == "XOM" && key.Date.Equal(prices.Dates[2]) {
					Expect(key.Sector).To(Equal("utilities"))
				} else if key.Asset == "XOM" {
					Expect(key.Sector).To(Equal("energy"))
				}
			}
		})

		It("drops rows without a sector label", func() {
			sectorSeries := factor.SectorSeries{}
			for _, dt := range prices.Dates[:5] {
				for _, asset := range []string{"AAPL", "MSFT"} {
					sectorSeries[factor.SectorKey{Date: dt, Asset: asset}] = "tech"
				}
			}

			cleanFactor, _, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, sectorSeries, []int{1}, 0, nil)
			Expect(err).To(BeNil())

			for _, key := range cleanFactor.Keys {
				Expect(key.Asset).ToNot(Equal("XOM"))
			}
		})
	})
})
