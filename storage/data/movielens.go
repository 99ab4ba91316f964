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

package data

import (
	"context"
	"strconv"
	"time"

	"github.com/gorse-io/movielens/base/log"
	"github.com/gorse-io/movielens/dataset"
	"github.com/gorse-io/movielens/labels"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// RatingFeedbackType is the feedback type of imported ratings.
const RatingFeedbackType = "rating"

// ConvertUsers converts MovieLens users to users. Codes are replaced by labels, unknown
// codes are kept as they are.
func ConvertUsers(users dataset.Users) []User {
	ages, occupations, genders := labels.Age(), labels.Occupation(), labels.Gender()
	return lo.Map(users, func(u dataset.User, _ int) User {
		return User{
			UserId: strconv.Itoa(u.UserId),
			Labels: map[string]any{
				"gender":     lookup(genders, u.Gender, u.Gender),
				"age":        lookup(ages, u.Age, strconv.Itoa(u.Age)),
				"occupation": lookup(occupations, u.Occupation, strconv.Itoa(u.Occupation)),
				"zip_code":   u.ZipCode,
			},
		}
	})
}

// ConvertMovies converts MovieLens movies to items. The timestamp of an item is the
// first day of its release year.
func ConvertMovies(movies dataset.Movies) []Item {
	return lo.Map(movies, func(m dataset.Movie, _ int) Item {
		item := Item{
			ItemId:     strconv.Itoa(m.MovieId),
			Categories: m.GenreList(),
			Labels:     map[string]any{"title": m.Title},
		}
		if year, ok := m.Year(); ok {
			item.Timestamp = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			item.Labels["year"] = year
		}
		return item
	})
}

// ConvertRatings converts MovieLens ratings to feedback.
func ConvertRatings(ratings dataset.Ratings) []Feedback {
	return lo.Map(ratings, func(r dataset.Rating, _ int) Feedback {
		return Feedback{
			FeedbackKey: FeedbackKey{
				FeedbackType: RatingFeedbackType,
				UserId:       strconv.Itoa(r.UserId),
				ItemId:       strconv.Itoa(r.MovieId),
			},
			Value:     float64(r.Rating),
			Timestamp: r.Time(),
		}
	})
}

// ImportMovieLens writes users, movies and ratings into the database.
func ImportMovieLens(ctx context.Context, database Database, tables *dataset.Tables) error {
	users := ConvertUsers(tables.Users)
	if err := database.BatchInsertUsers(ctx, users); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("import users", zap.Int("n_users", len(users)))
	items := ConvertMovies(tables.Movies)
	if err := database.BatchInsertItems(ctx, items); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("import items", zap.Int("n_items", len(items)))
	feedback := ConvertRatings(tables.Ratings)
	if err := database.BatchInsertFeedback(ctx, feedback); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("import feedback", zap.Int("n_feedback", len(feedback)))
	return nil
}

func lookup[K comparable](m map[K]string, key K, fallback string) string {
	if label, ok := m[key]; ok {
		return label
	}
	return fallback
}
