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
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gorse-io/movielens/base/log"
	"github.com/gorse-io/movielens/cmd/version"
	"github.com/gorse-io/movielens/dataset"
	"github.com/gorse-io/movielens/labels"
	"github.com/gorse-io/movielens/storage/data"
	"github.com/gorse-io/movielens/storage/parquet"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDownloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Download and extract the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			return download(conf)
		},
	}
}

func newLoadCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "load",
		Short: "Load the dataset and print the head of each table",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			tables, err := dataset.LoadAll(conf.Dataset.Dir)
			if err != nil {
				return errors.Trace(err)
			}
			head, _ := cmd.Flags().GetInt("head")
			return printTables(cmd.OutOrStdout(), tables, head)
		},
	}
	command.Flags().Int("head", 5, "number of rows to print from each table")
	return command
}

func newSplitCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "split",
		Short: "Split users into train, validation and test sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			if cmd.Flags().Changed("seed") {
				conf.Split.Seed, _ = cmd.Flags().GetInt64("seed")
			}
			users, err := dataset.LoadUsers(conf.Dataset.Dir)
			if err != nil {
				return errors.Trace(err)
			}
			_, err = dataset.CreateUserSplits(users, conf.Split.Dir, conf.Split.Seed)
			return errors.Trace(err)
		},
	}
	command.Flags().Int64("seed", 42, "random seed of the split")
	return command
}

func newImportCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "import",
		Short: "Import users, movies and ratings into a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			tables, err := dataset.LoadAll(conf.Dataset.Dir)
			if err != nil {
				return errors.Trace(err)
			}
			if cmd.Flags().Changed("batch-size") {
				conf.Database.BatchSize, _ = cmd.Flags().GetInt("batch-size")
			}
			log.Logger().Info("connect data store", zap.String("database", log.RedactDBURL(conf.Database.DataStore)))
			database, err := data.Open(conf.Database.DataStore, conf.Database.TablePrefix, conf.Database.StorageOptions()...)
			if err != nil {
				return errors.Trace(err)
			}
			defer database.Close()
			if err = database.Init(); err != nil {
				return errors.Trace(err)
			}
			return data.ImportMovieLens(context.Background(), database, tables)
		},
	}
	command.Flags().Int("batch-size", 1000, "number of rows per insert")
	return command
}

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the dataset to parquet files",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			tables, err := dataset.LoadAll(conf.Dataset.Dir)
			if err != nil {
				return errors.Trace(err)
			}
			if err = parquet.WriteTables(conf.Export.Dir, tables); err != nil {
				return errors.Trace(err)
			}
			for _, name := range []string{parquet.RatingsFile, parquet.UsersFile, parquet.MoviesFile} {
				path := filepath.Join(conf.Export.Dir, name)
				n, err := parquet.CountRows(path)
				if err != nil {
					return errors.Trace(err)
				}
				if _, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", path, n); err != nil {
					return errors.Trace(err)
				}
			}
			return nil
		},
	}
}

func newLabelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "Print the age and occupation labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(w, "Age:"); err != nil {
				return errors.Trace(err)
			}
			if err := printTable(w, []string{"code", "label"}, codeRows(labels.Age())); err != nil {
				return errors.Trace(err)
			}
			if _, err := fmt.Fprintln(w, "\nOccupation:"); err != nil {
				return errors.Trace(err)
			}
			return printTable(w, []string{"code", "label"}, codeRows(labels.Occupation()))
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of movielens",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
			return err
		},
	}
}

func codeRows(m map[int]string) [][]string {
	codes := lo.Keys(m)
	sort.Ints(codes)
	return lo.Map(codes, func(code int, _ int) []string {
		return []string{strconv.Itoa(code), m[code]}
	})
}
