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
	"path/filepath"
	"testing"

	"github.com/gorse-io/movielens/dataset"
	"github.com/jaswdr/faker"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRatings(t *testing.T) {
	fake := faker.New()
	ratings := dataset.Ratings(lo.Times(100, func(i int) dataset.Rating {
		return dataset.Rating{
			UserId:    fake.IntBetween(1, 6040),
			MovieId:   fake.IntBetween(1, 3952),
			Rating:    fake.IntBetween(1, 5),
			Timestamp: fake.Int64Between(956703932, 1046454590),
		}
	}))
	path := filepath.Join(t.TempDir(), "export", RatingsFile)
	require.NoError(t, WriteRatings(path, ratings))
	n, err := CountRows(path)
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)
	loaded, err := ReadRatings(path)
	require.NoError(t, err)
	assert.Equal(t, ratings, loaded)
}

func TestWriteTables(t *testing.T) {
	dir := t.TempDir()
	tables := &dataset.Tables{
		Ratings: dataset.Ratings{{UserId: 1, MovieId: 1, Rating: 5, Timestamp: 978300760}},
		Users: dataset.Users{
			{UserId: 1, Gender: "F", Age: 1, Occupation: 10, ZipCode: "48067"},
			{UserId: 2, Gender: "M", Age: 56, Occupation: 16, ZipCode: "70072"},
		},
		Movies: dataset.Movies{
			{MovieId: 1, Title: "Toy Story (1995)", Genres: "Animation|Children's|Comedy"},
			{MovieId: 2, Title: "José (1999)", Genres: "Drama"},
			{MovieId: 3, Title: "Heat (1995)", Genres: "Action|Crime|Thriller"},
		},
	}
	require.NoError(t, WriteTables(dir, tables))
	for name, expected := range map[string]int64{RatingsFile: 1, UsersFile: 2, MoviesFile: 3} {
		n, err := CountRows(filepath.Join(dir, name))
		assert.NoError(t, err)
		assert.Equal(t, expected, n, name)
	}
}

func TestCountRowsMissing(t *testing.T) {
	_, err := CountRows(filepath.Join(t.TempDir(), "absent.parquet"))
	assert.Error(t, err)
}
