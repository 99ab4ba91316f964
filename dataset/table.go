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
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Column names.
const (
	ColumnUserId     = "user_id"
	ColumnMovieId    = "movie_id"
	ColumnRating     = "rating"
	ColumnTimestamp  = "timestamp"
	ColumnGender     = "gender"
	ColumnAge        = "age"
	ColumnOccupation = "occupation"
	ColumnZipCode    = "zip_code"
	ColumnTitle      = "title"
	ColumnGenres     = "genres"
)

// Table is a loaded flat file with a fixed column schema.
type Table interface {
	Columns() []string
	Len() int
	// IntColumn returns the values of an integer column in row order.
	IntColumn(name string) ([]int, error)
}

// Rating is a line of ratings.dat.
type Rating struct {
	UserId    int
	MovieId   int
	Rating    int
	Timestamp int64
}

// Time converts the Unix timestamp of the rating.
func (r Rating) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

type Ratings []Rating

func (r Ratings) Columns() []string {
	return []string{ColumnUserId, ColumnMovieId, ColumnRating, ColumnTimestamp}
}

func (r Ratings) Len() int {
	return len(r)
}

func (r Ratings) IntColumn(name string) ([]int, error) {
	switch name {
	case ColumnUserId:
		return lo.Map(r, func(v Rating, _ int) int { return v.UserId }), nil
	case ColumnMovieId:
		return lo.Map(r, func(v Rating, _ int) int { return v.MovieId }), nil
	case ColumnRating:
		return lo.Map(r, func(v Rating, _ int) int { return v.Rating }), nil
	case ColumnTimestamp:
		return lo.Map(r, func(v Rating, _ int) int { return int(v.Timestamp) }), nil
	}
	return nil, errors.NotFoundf("integer column %s in ratings", name)
}

// User is a line of users.dat.
type User struct {
	UserId     int
	Gender     string
	Age        int
	Occupation int
	ZipCode    string
}

type Users []User

func (u Users) Columns() []string {
	return []string{ColumnUserId, ColumnGender, ColumnAge, ColumnOccupation, ColumnZipCode}
}

func (u Users) Len() int {
	return len(u)
}

func (u Users) IntColumn(name string) ([]int, error) {
	switch name {
	case ColumnUserId:
		return lo.Map(u, func(v User, _ int) int { return v.UserId }), nil
	case ColumnAge:
		return lo.Map(u, func(v User, _ int) int { return v.Age }), nil
	case ColumnOccupation:
		return lo.Map(u, func(v User, _ int) int { return v.Occupation }), nil
	}
	return nil, errors.NotFoundf("integer column %s in users", name)
}

// Movie is a line of movies.dat.
type Movie struct {
	MovieId int
	Title   string
	// Genres are joined by '|'.
	Genres string
}

var yearPattern = regexp.MustCompile(`\((\d{4})\)\s*$`)

// Year extracts the release year at the end of the title, e.g. "Toy Story (1995)".
func (m Movie) Year() (int, bool) {
	match := yearPattern.FindStringSubmatch(m.Title)
	if match == nil {
		return 0, false
	}
	year, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// GenreList splits genres.
func (m Movie) GenreList() []string {
	if m.Genres == "" {
		return nil
	}
	return strings.Split(m.Genres, "|")
}

type Movies []Movie

func (m Movies) Columns() []string {
	return []string{ColumnMovieId, ColumnTitle, ColumnGenres}
}

func (m Movies) Len() int {
	return len(m)
}

func (m Movies) IntColumn(name string) ([]int, error) {
	if name == ColumnMovieId {
		return lo.Map(m, func(v Movie, _ int) int { return v.MovieId }), nil
	}
	return nil, errors.NotFoundf("integer column %s in movies", name)
}
