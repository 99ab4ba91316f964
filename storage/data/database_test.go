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

package data

import (
	"context"
	"time"

	"github.com/gorse-io/movielens/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/suite"
)

type baseTestSuite struct {
	suite.Suite
	Database
}

func (suite *baseTestSuite) TestUsers() {
	ctx := context.Background()
	err := suite.Database.BatchInsertUsers(ctx, []User{
		{UserId: "1", Labels: map[string]any{"gender": "female"}},
		{UserId: "2", Labels: map[string]any{"gender": "male"}},
	})
	suite.NoError(err)
	// overwrite
	err = suite.Database.BatchInsertUsers(ctx, []User{{UserId: "1", Labels: map[string]any{"gender": "male"}, Comment: "updated"}})
	suite.NoError(err)
	n, err := suite.Database.CountUsers(ctx)
	suite.NoError(err)
	suite.Equal(2, n)
	user, err := suite.Database.GetUser(ctx, "1")
	suite.NoError(err)
	suite.Equal("male", user.Labels["gender"])
	suite.Equal("updated", user.Comment)
	// not exist
	_, err = suite.Database.GetUser(ctx, "3")
	suite.True(errors.Is(err, errors.NotFound))
	// empty batch
	suite.NoError(suite.Database.BatchInsertUsers(ctx, nil))
}

func (suite *baseTestSuite) TestItems() {
	ctx := context.Background()
	err := suite.Database.BatchInsertItems(ctx, []Item{{
		ItemId:     "1",
		Categories: []string{"Animation", "Comedy"},
		Timestamp:  time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC),
		Labels:     map[string]any{"title": "Toy Story (1995)"},
	}})
	suite.NoError(err)
	item, err := suite.Database.GetItem(ctx, "1")
	suite.NoError(err)
	suite.Equal([]string{"Animation", "Comedy"}, item.Categories)
	suite.Equal("Toy Story (1995)", item.Labels["title"])
	suite.Equal(1995, item.Timestamp.UTC().Year())
	_, err = suite.Database.GetItem(ctx, "2")
	suite.True(errors.Is(err, errors.NotFound))
}

func (suite *baseTestSuite) TestFeedback() {
	ctx := context.Background()
	feedback := []Feedback{
		{FeedbackKey: FeedbackKey{RatingFeedbackType, "1", "1193"}, Value: 5, Timestamp: time.Unix(978300760, 0)},
		{FeedbackKey: FeedbackKey{RatingFeedbackType, "1", "661"}, Value: 3, Timestamp: time.Unix(978302109, 0)},
	}
	suite.NoError(suite.Database.BatchInsertFeedback(ctx, feedback))
	// duplicate keys are overwritten
	suite.NoError(suite.Database.BatchInsertFeedback(ctx, feedback[:1]))
	n, err := suite.Database.CountFeedback(ctx)
	suite.NoError(err)
	suite.Equal(2, n)
}

func (suite *baseTestSuite) TestImportMovieLens() {
	ctx := context.Background()
	tables := &dataset.Tables{
		Ratings: dataset.Ratings{
			{UserId: 1, MovieId: 1, Rating: 5, Timestamp: 978300760},
			{UserId: 2, MovieId: 1, Rating: 4, Timestamp: 978298413},
			{UserId: 2, MovieId: 2, Rating: 3, Timestamp: 978298413},
		},
		Users: dataset.Users{
			{UserId: 1, Gender: "F", Age: 1, Occupation: 10, ZipCode: "48067"},
			{UserId: 2, Gender: "M", Age: 56, Occupation: 16, ZipCode: "70072"},
		},
		Movies: dataset.Movies{
			{MovieId: 1, Title: "Toy Story (1995)", Genres: "Animation|Children's|Comedy"},
			{MovieId: 2, Title: "Jumanji (1995)", Genres: "Adventure|Children's|Fantasy"},
		},
	}
	suite.NoError(ImportMovieLens(ctx, suite.Database, tables))
	// import twice
	suite.NoError(ImportMovieLens(ctx, suite.Database, tables))

	n, err := suite.Database.CountUsers(ctx)
	suite.NoError(err)
	suite.Equal(2, n)
	n, err = suite.Database.CountItems(ctx)
	suite.NoError(err)
	suite.Equal(2, n)
	n, err = suite.Database.CountFeedback(ctx)
	suite.NoError(err)
	suite.Equal(3, n)

	user, err := suite.Database.GetUser(ctx, "2")
	suite.NoError(err)
	suite.Equal("56+", user.Labels["age"])
	suite.Equal("self-employed", user.Labels["occupation"])
	item, err := suite.Database.GetItem(ctx, "2")
	suite.NoError(err)
	suite.Equal([]string{"Adventure", "Children's", "Fantasy"}, item.Categories)
	suite.Equal(float64(1995), item.Labels["year"])
}
