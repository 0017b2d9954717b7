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

package data_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-factor/common"
	"github.com/penny-vault/pv-factor/data"
	"github.com/penny-vault/pv-factor/dataframe"
	"github.com/penny-vault/pv-factor/factor"
)

var _ = Describe("Data loading", func() {
	var (
		ctx context.Context
		dir string
		tz  *time.Location
	)

	BeforeEach(func() {
		ctx = context.Background()
		tz = common.GetTimezone()

		var err error
		dir, err = os.MkdirTemp("", "pvfactor")
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	writeFile := func(name, contents string) string {
		fn := filepath.Join(dir, name)
		Expect(os.WriteFile(fn, []byte(contents), 0600)).To(Succeed())
		return fn
	}

	Context("when loading prices from CSV", func() {
		It("builds a wide dataframe with a date index", func() {
			fn := writeFile("prices.csv", `date,AAPL,MSFT
2021-01-01,100.0,200.0
2021-01-02,101.0,203.0
2021-01-03,102.0,206.0
`)

			prices, err := data.PricesFromCSV(ctx, fn)
			Expect(err).To(BeNil())
			Expect(prices.Len()).To(Equal(3))
			Expect(prices.ColNames).To(Equal([]string{"AAPL", "MSFT"}))
			Expect(prices.Dates[0]).To(Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, tz)))
			Expect(prices.Vals[0][1]).To(BeNumerically("==", 101.0))
			Expect(prices.Vals[1][2]).To(BeNumerically("==", 206.0))
		})

		It("marks empty cells as NaN", func() {
			fn := writeFile("prices.csv", `date,AAPL,MSFT
2021-01-01,100.0,
2021-01-02,101.0,203.0
`)

			prices, err := data.PricesFromCSV(ctx, fn)
			Expect(err).To(BeNil())
			Expect(math.IsNaN(prices.Vals[1][0])).To(BeTrue())
			Expect(prices.Vals[1][1]).To(BeNumerically("==", 203.0))
		})

		It("errors when the file does not exist", func() {
			_, err := data.PricesFromCSV(ctx, filepath.Join(dir, "missing.csv"))
			Expect(err).ToNot(BeNil())
		})
	})

	Context("when loading a factor from CSV", func() {
		It("builds a series keyed by date and asset", func() {
			fn := writeFile("factor.csv", `date,asset,factor
2021-01-01,AAPL,0.5
2021-01-01,MSFT,-0.5
2021-01-02,AAPL,0.25
2021-01-02,MSFT,-0.25
`)

			series, err := data.FactorFromCSV(ctx, fn)
			Expect(err).To(BeNil())
			Expect(series.Name).To(Equal("factor"))
			Expect(series.Len()).To(Equal(4))
			Expect(series.Keys[0]).To(Equal(dataframe.Key{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, tz), Asset: "AAPL"}))
			Expect(series.Vals).To(Equal([]float64{0.5, -0.5, 0.25, -0.25}))
		})

		It("sorts rows date major", func() {
			fn := writeFile("factor.csv", `date,asset,factor
2021-01-02,MSFT,-0.25
2021-01-01,AAPL,0.5
2021-01-02,AAPL,0.25
2021-01-01,MSFT,-0.5
`)

			series, err := data.FactorFromCSV(ctx, fn)
			Expect(err).To(BeNil())
			Expect(series.Keys[0].Asset).To(Equal("AAPL"))
			Expect(series.Keys[0].Date).To(Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, tz)))
			Expect(series.Vals).To(Equal([]float64{0.5, -0.5, 0.25, -0.25}))
		})

		It("drops rows with a missing score", func() {
			fn := writeFile("factor.csv", `date,asset,factor
2021-01-01,AAPL,0.5
2021-01-01,MSFT,
2021-01-02,AAPL,0.25
`)

			series, err := data.FactorFromCSV(ctx, fn)
			Expect(err).To(BeNil())
			Expect(series.Len()).To(Equal(2))
			for _, v := range series.Vals {
				Expect(math.IsNaN(v)).To(BeFalse())
			}
		})
	})

	Context("when feeding loaded files through the analysis pipeline", func() {
		It("aligns factor and price rows loaded from separate files", func() {
			priceFn := writeFile("prices.csv", `date,AAPL,MSFT
2021-01-01,100.0,200.0
2021-01-02,102.0,198.0
2021-01-03,104.04,196.02
2021-01-04,103.0,200.0
2021-01-05,105.0,202.0
`)
			factorFn := writeFile("factor.csv", `date,asset,factor
2021-01-01,AAPL,0.5
2021-01-01,MSFT,-0.5
2021-01-02,AAPL,0.25
2021-01-02,MSFT,-0.25
`)

			prices, err := data.PricesFromCSV(ctx, priceFn)
			Expect(err).To(BeNil())
			factorSeries, err := data.FactorFromCSV(ctx, factorFn)
			Expect(err).To(BeNil())

			cleanFactor, fwd, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, nil, []int{1}, 0, nil)
			Expect(err).To(BeNil())

			// every factor row has a next day price, so none are dropped
			Expect(cleanFactor.Len()).To(Equal(4))
			Expect(fwd.Len()).To(Equal(4))
			Expect(cleanFactor.Keys).To(Equal(fwd.Keys))

			Expect(fwd.Vals[0][0]).To(BeNumerically("~", 0.02, 1e-9))
			Expect(fwd.Vals[0][1]).To(BeNumerically("~", -0.01, 1e-9))
			Expect(fwd.Vals[0][2]).To(BeNumerically("~", 0.02, 1e-9))
			Expect(fwd.Vals[0][3]).To(BeNumerically("~", -0.01, 1e-9))
		})
	})

	Context("when loading sector mappings", func() {
		It("parses a static sector map from JSON", func() {
			fn := writeFile("sectors.json", `{"AAPL": "tech", "XOM": "energy"}`)

			sectors, err := data.SectorsFromJSON(fn)
			Expect(err).To(BeNil())
			Expect(sectors).To(Equal(factor.SectorMap{"AAPL": "tech", "XOM": "energy"}))
		})

		It("parses sector display names from JSON", func() {
			fn := writeFile("names.json", `{"tech": "Information Technology"}`)

			names, err := data.SectorNamesFromJSON(fn)
			Expect(err).To(BeNil())
			Expect(names).To(Equal(map[string]string{"tech": "Information Technology"}))
		})

		It("parses a time-varying sector series from CSV", func() {
			fn := writeFile("sectors.csv", `date,asset,sector
2021-01-01,AAPL,tech
2021-01-02,AAPL,conglomerate
`)

			series, err := data.SectorSeriesFromCSV(ctx, fn)
			Expect(err).To(BeNil())

			sector, ok := series.Lookup(time.Date(2021, 1, 2, 0, 0, 0, 0, tz), "AAPL")
			Expect(ok).To(BeTrue())
			Expect(sector).To(Equal("conglomerate"))

			_, ok = series.Lookup(time.Date(2021, 1, 3, 0, 0, 0, 0, tz), "AAPL")
			Expect(ok).To(BeFalse())
		})

		It("errors on malformed JSON", func() {
			fn := writeFile("sectors.json", `{"AAPL": `)
			_, err := data.SectorsFromJSON(fn)
			Expect(err).ToNot(BeNil())
		})
	})
})
