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
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-factor/dataframe"
	"github.com/penny-vault/pv-factor/factor"
)

var _ = Describe("DemeanForwardReturns", func() {
	var (
		day1 time.Time
		day2 time.Time
		fwd  *dataframe.Panel
	)

	BeforeEach(func() {
		day1 = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
		day2 = time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)

		fwd = &dataframe.Panel{
			Keys: []dataframe.Key{
				{Date: day1, Asset: "AAPL", Sector: "tech"},
				{Date: day1, Asset: "MSFT", Sector: "tech"},
				{Date: day1, Asset: "XOM", Sector: "energy"},
				{Date: day1, Asset: "CVX", Sector: "energy"},
				{Date: day2, Asset: "AAPL", Sector: "tech"},
				{Date: day2, Asset: "MSFT", Sector: "tech"},
				{Date: day2, Asset: "XOM", Sector: "energy"},
				{Date: day2, Asset: "CVX", Sector: "energy"},
			},
			ColNames: []string{"1"},
			Vals: [][]float64{
				{0.01, 0.03, 0.05, 0.07, -0.02, 0.02, 0.1, 0.3},
			},
		}
	})

	It("produces a zero mean across assets for every date", func() {
		demeaned := factor.DemeanForwardReturns(fwd, false)

		for _, day := range []time.Time{day1, day2} {
			sum := 0.0
			cnt := 0
			for idx, key := range demeaned.Keys {
				if key.Date.Equal(day) {
					sum += demeaned.Vals[0][idx]
					cnt++
				}
			}
			Expect(cnt).To(Equal(4))
			Expect(sum / float64(cnt)).To(BeNumerically("~", 0.0, 1e-12))
		}
	})

	It("subtracts the date mean from each return", func() {
		demeaned := factor.DemeanForwardReturns(fwd, false)
		// day1 mean is 0.04
		Expect(demeaned.Vals[0][0]).To(BeNumerically("~", -0.03, 1e-12))
		Expect(demeaned.Vals[0][3]).To(BeNumerically("~", 0.03, 1e-12))
	})

	It("produces a zero mean within each sector when bySector is true", func() {
		demeaned := factor.DemeanForwardReturns(fwd, true)

		for _, day := range []time.Time{day1, day2} {
			for _, sector := range []string{"tech", "energy"} {
				sum := 0.0
				cnt := 0
				for idx, key := range demeaned.Keys {
					if key.Date.Equal(day) && key.Sector == sector {
						sum += demeaned.Vals[0][idx]
						cnt++
					}
				}
				Expect(cnt).To(Equal(2))
				Expect(sum / float64(cnt)).To(BeNumerically("~", 0.0, 1e-12))
			}
		}
	})

	It("adjusts returns relative to the sector mean", func() {
		demeaned := factor.DemeanForwardReturns(fwd, true)
		// day1 tech mean is 0.02; AAPL is 0.01
		Expect(demeaned.Vals[0][0]).To(BeNumerically("~", -0.01, 1e-12))
		// day1 energy mean is 0.06; XOM is 0.05
		Expect(demeaned.Vals[0][2]).To(BeNumerically("~", -0.01, 1e-12))
	})

	It("excludes NaN from the mean and preserves it in the output", func() {
		fwd.Vals[0][1] = math.NaN()
		demeaned := factor.DemeanForwardReturns(fwd, false)

		// day1 mean over the remaining three values is (0.01+0.05+0.07)/3
		mean := (0.01 + 0.05 + 0.07) / 3.0
		Expect(demeaned.Vals[0][0]).To(BeNumerically("~", 0.01-mean, 1e-12))
		Expect(math.IsNaN(demeaned.Vals[0][1])).To(BeTrue())
	})

	It("does not modify the input panel", func() {
		_ = factor.DemeanForwardReturns(fwd, false)
		Expect(fwd.Vals[0][0]).To(BeNumerically("==", 0.01))
	})
})
