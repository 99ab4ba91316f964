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

package parquet

import (
	"os"
	"path/filepath"

	"github.com/gorse-io/movielens/base/log"
	"github.com/gorse-io/movielens/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"
)

const parallel = 4

const (
	RatingsFile = "ratings.parquet"
	UsersFile   = "users.parquet"
	MoviesFile  = "movies.parquet"
)

type Rating struct {
	UserId    int32 `parquet:"name=user_id, type=INT32"`
	MovieId   int32 `parquet:"name=movie_id, type=INT32"`
	Rating    int32 `parquet:"name=rating, type=INT32"`
	Timestamp int64 `parquet:"name=timestamp, type=INT64"`
}

type User struct {
	UserId     int32  `parquet:"name=user_id, type=INT32"`
	Gender     string `parquet:"name=gender, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Age        int32  `parquet:"name=age, type=INT32"`
	Occupation int32  `parquet:"name=occupation, type=INT32"`
	ZipCode    string `parquet:"name=zip_code, type=BYTE_ARRAY, convertedtype=UTF8"`
}

type Movie struct {
	MovieId int32  `parquet:"name=movie_id, type=INT32"`
	Title   string `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Genres  string `parquet:"name=genres, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// WriteRatings writes ratings to a parquet file.
func WriteRatings(path string, ratings dataset.Ratings) error {
	return write(path, lo.Map(ratings, func(r dataset.Rating, _ int) Rating {
		return Rating{
			UserId:    int32(r.UserId),
			MovieId:   int32(r.MovieId),
			Rating:    int32(r.Rating),
			Timestamp: r.Timestamp,
		}
	}))
}

// WriteUsers writes users to a parquet file.
func WriteUsers(path string, users dataset.Users) error {
	return write(path, lo.Map(users, func(u dataset.User, _ int) User {
		return User{
			UserId:     int32(u.UserId),
			Gender:     u.Gender,
			Age:        int32(u.Age),
			Occupation: int32(u.Occupation),
			ZipCode:    u.ZipCode,
		}
	}))
}

// WriteMovies writes movies to a parquet file.
func WriteMovies(path string, movies dataset.Movies) error {
	return write(path, lo.Map(movies, func(m dataset.Movie, _ int) Movie {
		return Movie{
			MovieId: int32(m.MovieId),
			Title:   m.Title,
			Genres:  m.Genres,
		}
	}))
}

// WriteTables writes all tables into a directory.
func WriteTables(dir string, tables *dataset.Tables) error {
	if err := WriteRatings(filepath.Join(dir, RatingsFile), tables.Ratings); err != nil {
		return errors.Trace(err)
	}
	if err := WriteUsers(filepath.Join(dir, UsersFile), tables.Users); err != nil {
		return errors.Trace(err)
	}
	if err := WriteMovies(filepath.Join(dir, MoviesFile), tables.Movies); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func write[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.Trace(err)
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return errors.Annotatef(err, "failed to create %s", path)
	}
	defer fw.Close()
	pw, err := writer.NewParquetWriter(fw, new(T), parallel)
	if err != nil {
		return errors.Trace(err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err = pw.Write(row); err != nil {
			return errors.Annotatef(err, "failed to write %s", path)
		}
	}
	if err = pw.WriteStop(); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("write parquet file", zap.String("path", path), zap.Int("n_rows", len(rows)))
	return nil
}

// CountRows returns the number of rows in a parquet file.
func CountRows(path string) (int64, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return 0, errors.Annotatef(err, "failed to open %s", path)
	}
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, nil, parallel)
	if err != nil {
		return 0, errors.Trace(err)
	}
	defer pr.ReadStop()
	return pr.GetNumRows(), nil
}

// ReadRatings reads ratings from a parquet file.
func ReadRatings(path string) (dataset.Ratings, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to open %s", path)
	}
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(Rating), parallel)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer pr.ReadStop()
	rows := make([]Rating, pr.GetNumRows())
	if err = pr.Read(&rows); err != nil {
		return nil, errors.Trace(err)
	}
	return lo.Map(rows, func(r Rating, _ int) dataset.Rating {
		return dataset.Rating{
			UserId:    int(r.UserId),
			MovieId:   int(r.MovieId),
			Rating:    int(r.Rating),
			Timestamp: r.Timestamp,
		}
	}), nil
}
