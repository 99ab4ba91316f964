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
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorse-io/movielens/common/util"
	"github.com/juju/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
)

const (
	RatingsFile = "ratings.dat"
	UsersFile   = "users.dat"
	MoviesFile  = "movies.dat"

	separator = "::"
)

// LoadRatings loads <dir>/ml-1m/ratings.dat.
func LoadRatings(dir string) (Ratings, error) {
	return loadFlatFile(filepath.Join(ExtractPath(dir), RatingsFile), 4, func(fields []string) (r Rating, err error) {
		if r.UserId, err = util.ParseInt[int](fields[0]); err != nil {
			return
		}
		if r.MovieId, err = util.ParseInt[int](fields[1]); err != nil {
			return
		}
		if r.Rating, err = util.ParseInt[int](fields[2]); err != nil {
			return
		}
		r.Timestamp, err = util.ParseInt[int64](fields[3])
		return
	})
}

// LoadUsers loads <dir>/ml-1m/users.dat.
func LoadUsers(dir string) (Users, error) {
	return loadFlatFile(filepath.Join(ExtractPath(dir), UsersFile), 5, func(fields []string) (u User, err error) {
		if u.UserId, err = util.ParseInt[int](fields[0]); err != nil {
			return
		}
		u.Gender = fields[1]
		if u.Age, err = util.ParseInt[int](fields[2]); err != nil {
			return
		}
		if u.Occupation, err = util.ParseInt[int](fields[3]); err != nil {
			return
		}
		u.ZipCode = fields[4]
		return
	})
}

// LoadMovies loads <dir>/ml-1m/movies.dat.
func LoadMovies(dir string) (Movies, error) {
	return loadFlatFile(filepath.Join(ExtractPath(dir), MoviesFile), 3, func(fields []string) (m Movie, err error) {
		if m.MovieId, err = util.ParseInt[int](fields[0]); err != nil {
			return
		}
		m.Title = fields[1]
		m.Genres = fields[2]
		return
	})
}

// Tables holds all flat files of the dataset.
type Tables struct {
	Ratings Ratings
	Users   Users
	Movies  Movies
}

// LoadAll loads ratings, users and movies concurrently.
func LoadAll(dir string) (*Tables, error) {
	var (
		tables Tables
		group  errgroup.Group
	)
	group.Go(func() (err error) {
		tables.Ratings, err = LoadRatings(dir)
		return
	})
	group.Go(func() (err error) {
		tables.Users, err = LoadUsers(dir)
		return
	})
	group.Go(func() (err error) {
		tables.Movies, err = LoadMovies(dir)
		return
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &tables, nil
}

// loadFlatFile parses a '::' separated file without header. The file is decoded as
// ISO-8859-1. Blank lines are skipped, any other malformed line fails the whole load.
func loadFlatFile[T any](path string, numFields int, parse func([]string) (T, error)) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()

	var rows []T
	scanner := bufio.NewScanner(charmap.ISO8859_1.NewDecoder().Reader(file))
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, separator)
		if len(fields) != numFields {
			return nil, errors.NotValidf("%s:%d: expected %d fields but got %d",
				filepath.Base(path), lineNumber, numFields, len(fields))
		}
		row, err := parse(fields)
		if err != nil {
			return nil, errors.Annotatef(err, "%s:%d", filepath.Base(path), lineNumber)
		}
		rows = append(rows, row)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return rows, nil
}
