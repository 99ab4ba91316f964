// Copyright 2025 gorse Project Authors
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

package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/movielens/base"
	"github.com/gorse-io/movielens/base/log"
	"github.com/gorse-io/movielens/common/util"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const (
	TrainUsersFile = "train_users.csv"
	ValUsersFile   = "val_users.csv"
	TestUsersFile  = "test_users.csv"
)

// UserSplit is a partition of user ids. Every id belongs to exactly one subset.
type UserSplit struct {
	Train []int
	Val   []int
	Test  []int
}

// Len returns the total number of users.
func (s *UserSplit) Len() int {
	return len(s.Train) + len(s.Val) + len(s.Test)
}

// SplitUserIds partitions distinct ids into train (60%), validation (20%) and test (20%).
// The holdout takes ceil(40%) of the ids and test takes ceil(50%) of the holdout. The
// result depends only on the set of ids and the seed.
func SplitUserIds(ids []int, seed int64) UserSplit {
	distinct := mapset.NewThreadUnsafeSet(ids...).ToSlice()
	slices.Sort(distinct)
	train, holdout := splitRatio(distinct, 4, 10, seed)
	val, test := splitRatio(holdout, 1, 2, seed)
	return UserSplit{Train: train, Val: val, Test: test}
}

// splitRatio shuffles ids and cuts ceil(len*num/den) of them off as the second part.
func splitRatio(ids []int, num, den int, seed int64) ([]int, []int) {
	perm := base.NewRandomGenerator(seed).Permute(ids)
	numSecond := base.CeilRatio(len(perm), num, den)
	numFirst := len(perm) - numSecond
	return perm[:numFirst], perm[numFirst:]
}

// CreateUserSplits splits distinct values of the user_id column of table and saves them
// to train_users.csv, val_users.csv and test_users.csv in dir. Existing files are replaced.
func CreateUserSplits(table Table, dir string, seed int64) (*UserSplit, error) {
	userIds, err := table.IntColumn(ColumnUserId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err = os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Trace(err)
	}
	split := SplitUserIds(userIds, seed)
	for name, ids := range split.files() {
		if err = writeUserIds(filepath.Join(dir, name), ids); err != nil {
			return nil, errors.Trace(err)
		}
	}
	log.Logger().Info("create user splits",
		zap.String("dir", dir),
		zap.Int64("seed", seed),
		zap.Int("n_train", len(split.Train)),
		zap.Int("n_val", len(split.Val)),
		zap.Int("n_test", len(split.Test)))
	return &split, nil
}

// LoadUserSplits reads the split files written by CreateUserSplits.
func LoadUserSplits(dir string) (*UserSplit, error) {
	var (
		split UserSplit
		err   error
	)
	if split.Train, err = readUserIds(filepath.Join(dir, TrainUsersFile)); err != nil {
		return nil, errors.Trace(err)
	}
	if split.Val, err = readUserIds(filepath.Join(dir, ValUsersFile)); err != nil {
		return nil, errors.Trace(err)
	}
	if split.Test, err = readUserIds(filepath.Join(dir, TestUsersFile)); err != nil {
		return nil, errors.Trace(err)
	}
	return &split, nil
}

func (s *UserSplit) files() map[string][]int {
	return map[string][]int{
		TrainUsersFile: s.Train,
		ValUsersFile:   s.Val,
		TestUsersFile:  s.Test,
	}
}

func writeUserIds(path string, ids []int) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	if err = writer.Write([]string{ColumnUserId}); err != nil {
		return errors.Trace(err)
	}
	for _, id := range ids {
		if err = writer.Write([]string{strconv.Itoa(id)}); err != nil {
			return errors.Trace(err)
		}
	}
	writer.Flush()
	if err = writer.Error(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(file.Close())
}

func readUserIds(path string) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 1
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Annotatef(err, "failed to read header of %s", path)
	}
	if header[0] != ColumnUserId {
		return nil, errors.NotValidf("header %q of %s", header[0], path)
	}
	ids := make([]int, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Trace(err)
		}
		id, err := util.ParseInt[int](record[0])
		if err != nil {
			return nil, errors.Annotatef(err, "failed to parse user id in %s", path)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
