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
	"fmt"
	"os"

	"github.com/penny-vault/pv-factor/common"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Logging configuration
	viper.BindEnv("log.level", "PV_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "PV_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "PV_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "PV_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Print logs in human readable format")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// OTLP trace export
	viper.BindEnv("otlp.endpoint", "OTLP_ENDPOINT")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP trace collector endpoint, if blank don't export traces")
	viper.BindPFlag("otlp.endpoint", rootCmd.PersistentFlags().Lookup("otlp-endpoint"))

	viper.BindEnv("otlp.http", "OTLP_HTTP")
	rootCmd.PersistentFlags().Bool("otlp-http", false, "Use HTTP(s) instead of gRPC for the OTLP connection")
	viper.BindPFlag("otlp.http", rootCmd.PersistentFlags().Lookup("otlp-http"))
}

var rootCmd = &cobra.Command{
	Use:     "pvfactor",
	Version: common.CurrentVersion.String(),
	Short:   "pv-factor prepares data for alpha factor analysis",
	Long:    `Compute forward returns and align factor, pricing, and sector data into clean tables for evaluating the predictive power of alpha factors.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
