// Copyright 2020 gorse Project Authors
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

package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorse-io/movielens/base/log"
	"github.com/gorse-io/movielens/cmd/version"
	"github.com/gorse-io/movielens/config"
	"github.com/gorse-io/movielens/dataset"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "movielens",
		Short: "Download, load and split the MovieLens 1M dataset.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// setup logger
			debug, _ := cmd.Flags().GetBool("debug")
			log.SetLogger(cmd.Flags(), debug)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show version
			if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
				_, err := fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
				return err
			}
			// download, load and split, like running every step in order
			conf, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			if err = download(conf); err != nil {
				return errors.Trace(err)
			}
			tables, err := dataset.LoadAll(conf.Dataset.Dir)
			if err != nil {
				return errors.Trace(err)
			}
			if err = printTables(cmd.OutOrStdout(), tables, 5); err != nil {
				return errors.Trace(err)
			}
			_, err = dataset.CreateUserSplits(tables.Users, conf.Split.Dir, conf.Split.Seed)
			return errors.Trace(err)
		},
		SilenceUsage: true,
	}
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.Flags().BoolP("version", "v", false, "movielens version")
	rootCommand.AddCommand(
		newDownloadCommand(),
		newLoadCommand(),
		newSplitCommand(),
		newImportCommand(),
		newExportCommand(),
		newLabelsCommand(),
		newVersionCommand(),
	)
	return rootCommand
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	log.Logger().Info("load config", zap.String("config", configPath))
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return conf, nil
}

func download(conf *config.Config) error {
	return dataset.Download(conf.Dataset.Dir,
		dataset.WithClient(&http.Client{Timeout: conf.Dataset.Timeout}),
		dataset.WithURL(conf.Dataset.URL),
		dataset.WithChecksum(conf.Dataset.Checksum),
		dataset.WithProgress(conf.Dataset.Progress))
}

// printTables prints the first n rows of each table.
func printTables(w io.Writer, tables *dataset.Tables, n int) error {
	if _, err := fmt.Fprintln(w, "Ratings Data:"); err != nil {
		return errors.Trace(err)
	}
	if err := printTable(w, tables.Ratings.Columns(), lo.Map(lo.Subset(tables.Ratings, 0, uint(n)), func(r dataset.Rating, _ int) []string {
		return []string{strconv.Itoa(r.UserId), strconv.Itoa(r.MovieId), strconv.Itoa(r.Rating), strconv.FormatInt(r.Timestamp, 10)}
	})); err != nil {
		return errors.Trace(err)
	}
	if _, err := fmt.Fprintln(w, "\nUsers Data:"); err != nil {
		return errors.Trace(err)
	}
	if err := printTable(w, tables.Users.Columns(), lo.Map(lo.Subset(tables.Users, 0, uint(n)), func(u dataset.User, _ int) []string {
		return []string{strconv.Itoa(u.UserId), u.Gender, strconv.Itoa(u.Age), strconv.Itoa(u.Occupation), u.ZipCode}
	})); err != nil {
		return errors.Trace(err)
	}
	if _, err := fmt.Fprintln(w, "\nMovies Data:"); err != nil {
		return errors.Trace(err)
	}
	return printTable(w, tables.Movies.Columns(), lo.Map(lo.Subset(tables.Movies, 0, uint(n)), func(m dataset.Movie, _ int) []string {
		return []string{strconv.Itoa(m.MovieId), m.Title, m.Genres}
	}))
}

func printTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(lo.ToAnySlice(header)...)
	for _, row := range rows {
		if err := table.Append(lo.ToAnySlice(row)...); err != nil {
			return errors.Trace(err)
		}
	}
	return table.Render()
}
