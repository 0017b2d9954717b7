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

package cmd

import (
	"context"
	"fmt"

	"github.com/penny-vault/pv-factor/common"
	"github.com/penny-vault/pv-factor/data"
	"github.com/penny-vault/pv-factor/factor"
	"github.com/penny-vault/pv-factor/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	analyzeFactorFile     string
	analyzePriceFile      string
	analyzeSectorFile     string
	analyzeSectorSeries   string
	analyzeSectorNameFile string
	analyzeDays           []int
	analyzeFilterZscore   float64
	analyzeDemean         string
	analyzeTableFmt       string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFactorFile, "factor", "", "CSV of factor scores with columns date, asset, factor (required)")
	analyzeCmd.Flags().StringVar(&analyzePriceFile, "prices", "", "wide CSV of prices with a date column plus one column per asset (required)")
	analyzeCmd.Flags().StringVar(&analyzeSectorFile, "sectors", "", "JSON file mapping asset to sector code")
	analyzeCmd.Flags().StringVar(&analyzeSectorSeries, "sector-series", "", "CSV of time-varying sector codes with columns date, asset, sector")
	analyzeCmd.Flags().StringVar(&analyzeSectorNameFile, "sector-names", "", "JSON file mapping sector code to display name")
	analyzeCmd.Flags().IntSliceVar(&analyzeDays, "days", []int{1, 5, 10}, "holding periods to compute forward returns over")
	analyzeCmd.Flags().Float64Var(&analyzeFilterZscore, "filter-zscore", 20, "set forward returns more than filter-zscore standard deviations from the mean to NaN; 0 disables (WARNING: incorporates lookahead bias)")
	analyzeCmd.Flags().StringVar(&analyzeDemean, "demean", "none", "demean forward returns, one of: none, market, sector")
	analyzeCmd.Flags().StringVar(&analyzeTableFmt, "table-format", "%.4f", "format string for table values")

	if err := analyzeCmd.MarkFlagRequired("factor"); err != nil {
		log.Panic().Err(err).Msg("could not mark factor flag required")
	}
	if err := analyzeCmd.MarkFlagRequired("prices"); err != nil {
		log.Panic().Err(err).Msg("could not mark prices flag required")
	}
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags]",
	Short: "Align factor, pricing, and sector data and compute forward returns",
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		ctx := context.Background()

		if viper.GetString("otlp.endpoint") != "" {
			shutdown, err := opentelemetry.Setup()
			if err != nil {
				log.Fatal().Err(err).Msg("could not setup opentelemetry")
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Error().Stack().Err(err).Msg("could not shutdown trace exporter")
				}
			}()
		}

		factorSeries, err := data.FactorFromCSV(ctx, analyzeFactorFile)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", analyzeFactorFile).Msg("could not load factor data")
		}

		prices, err := data.PricesFromCSV(ctx, analyzePriceFile)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", analyzePriceFile).Msg("could not load price data")
		}

		var sectors factor.Sectors
		switch {
		case analyzeSectorFile != "" && analyzeSectorSeries != "":
			log.Fatal().Msg("only one of --sectors and --sector-series may be given")
		case analyzeSectorFile != "":
			sectorMap, err := data.SectorsFromJSON(analyzeSectorFile)
			if err != nil {
				log.Fatal().Err(err).Str("FileName", analyzeSectorFile).Msg("could not load sector mapping")
			}
			sectors = sectorMap
		case analyzeSectorSeries != "":
			sectorSeries, err := data.SectorSeriesFromCSV(ctx, analyzeSectorSeries)
			if err != nil {
				log.Fatal().Err(err).Str("FileName", analyzeSectorSeries).Msg("could not load sector series")
			}
			sectors = sectorSeries
		}

		var sectorNames map[string]string
		if analyzeSectorNameFile != "" {
			if sectorNames, err = data.SectorNamesFromJSON(analyzeSectorNameFile); err != nil {
				log.Fatal().Err(err).Str("FileName", analyzeSectorNameFile).Msg("could not load sector names")
			}
		}

		cleanFactor, forwardReturns, err := factor.GetCleanFactorAndForwardReturns(ctx, factorSeries, prices, sectors, analyzeDays, analyzeFilterZscore, sectorNames)
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute clean factor and forward returns")
		}

		switch analyzeDemean {
		case "none":
		case "market":
			forwardReturns = factor.DemeanForwardReturns(forwardReturns, false)
		case "sector":
			forwardReturns = factor.DemeanForwardReturns(forwardReturns, true)
		default:
			log.Fatal().Str("Demean", analyzeDemean).Msg("demean must be one of: none, market, sector")
		}

		fmt.Println("Factor")
		fmt.Println(cleanFactor.Table(analyzeTableFmt))
		fmt.Println("Forward Returns")
		fmt.Println(forwardReturns.Table(analyzeTableFmt))
	},
}
