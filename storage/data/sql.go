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
	"database/sql"

	"github.com/gorse-io/movielens/storage"
	"github.com/juju/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SQLDriver int

const (
	MySQL SQLDriver = iota
	Postgres
	SQLite
)

// SQLDatabase stores users, items and feedback in a SQL database.
type SQLDatabase struct {
	storage.TablePrefix
	gormDB *gorm.DB
	client *sql.DB
	driver SQLDriver
}

// Init tables and indices.
func (d *SQLDatabase) Init() error {
	db := d.gormDB
	if d.driver == MySQL {
		db = db.Set("gorm:table_options", "ENGINE=InnoDB")
	}
	if err := db.Table(d.UsersTable()).AutoMigrate(&User{}); err != nil {
		return errors.Trace(err)
	}
	if err := db.Table(d.ItemsTable()).AutoMigrate(&Item{}); err != nil {
		return errors.Trace(err)
	}
	if err := db.Table(d.FeedbackTable()).AutoMigrate(&Feedback{}); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (d *SQLDatabase) Close() error {
	return d.client.Close()
}

// BatchInsertUsers inserts users. Existing users are overwritten.
func (d *SQLDatabase) BatchInsertUsers(ctx context.Context, users []User) error {
	if len(users) == 0 {
		return nil
	}
	err := d.gormDB.WithContext(ctx).Table(d.UsersTable()).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&users).Error
	return errors.Trace(err)
}

// BatchInsertItems inserts items. Existing items are overwritten.
func (d *SQLDatabase) BatchInsertItems(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	err := d.gormDB.WithContext(ctx).Table(d.ItemsTable()).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&items).Error
	return errors.Trace(err)
}

// BatchInsertFeedback inserts feedback. Existing feedback is overwritten.
func (d *SQLDatabase) BatchInsertFeedback(ctx context.Context, feedback []Feedback) error {
	if len(feedback) == 0 {
		return nil
	}
	err := d.gormDB.WithContext(ctx).Table(d.FeedbackTable()).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&feedback).Error
	return errors.Trace(err)
}

func (d *SQLDatabase) GetUser(ctx context.Context, userId string) (*User, error) {
	var users []User
	if err := d.gormDB.WithContext(ctx).Table(d.UsersTable()).Where("user_id = ?", userId).Limit(1).Find(&users).Error; err != nil {
		return nil, errors.Trace(err)
	}
	if len(users) == 0 {
		return nil, errors.Trace(ErrUserNotExist)
	}
	return &users[0], nil
}

func (d *SQLDatabase) GetItem(ctx context.Context, itemId string) (*Item, error) {
	var items []Item
	if err := d.gormDB.WithContext(ctx).Table(d.ItemsTable()).Where("item_id = ?", itemId).Limit(1).Find(&items).Error; err != nil {
		return nil, errors.Trace(err)
	}
	if len(items) == 0 {
		return nil, errors.Trace(ErrItemNotExist)
	}
	return &items[0], nil
}

func (d *SQLDatabase) CountUsers(ctx context.Context) (int, error) {
	return d.count(ctx, d.UsersTable())
}

func (d *SQLDatabase) CountItems(ctx context.Context) (int, error) {
	return d.count(ctx, d.ItemsTable())
}

func (d *SQLDatabase) CountFeedback(ctx context.Context) (int, error) {
	return d.count(ctx, d.FeedbackTable())
}

func (d *SQLDatabase) count(ctx context.Context, table string) (int, error) {
	var n int64
	if err := d.gormDB.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
		return 0, errors.Trace(err)
	}
	return int(n), nil
}
