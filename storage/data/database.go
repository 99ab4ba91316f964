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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/gorse-io/movielens/storage"
	"github.com/juju/errors"
	_ "github.com/lib/pq"
	"github.com/samber/lo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// Item stores meta data about item.
type Item struct {
	ItemId     string         `gorm:"column:item_id;type:varchar(256);primaryKey"`
	IsHidden   bool           `gorm:"column:is_hidden"`
	Categories []string       `gorm:"column:categories;type:text;serializer:json"`
	Timestamp  time.Time      `gorm:"column:time_stamp"`
	Labels     map[string]any `gorm:"column:labels;type:text;serializer:json"`
	Comment    string         `gorm:"column:comment"`
}

// User stores meta data about user.
type User struct {
	UserId  string         `gorm:"column:user_id;type:varchar(256);primaryKey"`
	Labels  map[string]any `gorm:"column:labels;type:text;serializer:json"`
	Comment string         `gorm:"column:comment"`
}

// FeedbackKey identifies feedback.
type FeedbackKey struct {
	FeedbackType string `gorm:"column:feedback_type;type:varchar(256);primaryKey"`
	UserId       string `gorm:"column:user_id;type:varchar(256);primaryKey;index:user_id"`
	ItemId       string `gorm:"column:item_id;type:varchar(256);primaryKey;index:item_id"`
}

// Feedback stores feedback.
type Feedback struct {
	FeedbackKey `gorm:"embedded"`
	Value       float64   `gorm:"column:value"`
	Timestamp   time.Time `gorm:"column:time_stamp"`
	Comment     string    `gorm:"column:comment"`
}

type Database interface {
	Close() error
	Init() error
	BatchInsertUsers(ctx context.Context, users []User) error
	BatchInsertItems(ctx context.Context, items []Item) error
	BatchInsertFeedback(ctx context.Context, feedback []Feedback) error
	GetUser(ctx context.Context, userId string) (*User, error)
	GetItem(ctx context.Context, itemId string) (*Item, error)
	CountUsers(ctx context.Context) (int, error)
	CountItems(ctx context.Context) (int, error)
	CountFeedback(ctx context.Context) (int, error)
}

var (
	ErrUserNotExist = errors.NotFoundf("user")
	ErrItemNotExist = errors.NotFoundf("item")
)

// Open a connection to a database.
func Open(path, tablePrefix string, opts ...storage.Option) (Database, error) {
	var err error
	opt := storage.NewOptions(opts...)
	if strings.HasPrefix(path, storage.MySQLPrefix) {
		name := path[len(storage.MySQLPrefix):]
		// append parameters
		if name, err = storage.AppendMySQLParams(name, map[string]string{
			"sql_mode":              "'ONLY_FULL_GROUP_BY,STRICT_TRANS_TABLES,ERROR_FOR_DIVISION_BY_ZERO,NO_ENGINE_SUBSTITUTION'",
			"transaction_isolation": "'" + opt.IsolationLevel + "'",
			"parseTime":             "true",
		}); err != nil {
			return nil, errors.Trace(err)
		}
		// connect to database
		database := new(SQLDatabase)
		database.driver = MySQL
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		if database.client, err = otelsql.Open("mysql", name); err != nil {
			return nil, errors.Trace(err)
		}
		storage.ApplySQLPool(database.client, opt)
		database.gormDB, err = gorm.Open(mysql.New(mysql.Config{Conn: database.client}), storage.NewGORMConfig(tablePrefix, opt.BatchSize))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	} else if strings.HasPrefix(path, storage.PostgresPrefix) || strings.HasPrefix(path, storage.PostgreSQLPrefix) {
		database := new(SQLDatabase)
		database.driver = Postgres
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		if database.client, err = otelsql.Open("postgres", path); err != nil {
			return nil, errors.Trace(err)
		}
		storage.ApplySQLPool(database.client, opt)
		database.gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: database.client}), storage.NewGORMConfig(tablePrefix, opt.BatchSize))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	} else if strings.HasPrefix(path, storage.SQLitePrefix) {
		// create parent directory
		name := path[len(storage.SQLitePrefix):]
		if dir := filepath.Dir(name); dir != "." {
			if err = os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, errors.Trace(err)
			}
		}
		// append parameters
		if path, err = storage.AppendURLParams(path, []lo.Tuple2[string, string]{
			{A: "_pragma", B: "busy_timeout(10000)"},
			{A: "_pragma", B: "journal_mode(wal)"},
		}); err != nil {
			return nil, errors.Trace(err)
		}
		// connect to database
		name = path[len(storage.SQLitePrefix):]
		database := new(SQLDatabase)
		database.driver = SQLite
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		if database.client, err = otelsql.Open("sqlite", name); err != nil {
			return nil, errors.Trace(err)
		}
		storage.ApplySQLPool(database.client, opt)
		database.gormDB, err = gorm.Open(sqlite.Dialector{Conn: database.client}, storage.NewGORMConfig(tablePrefix, opt.BatchSize))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	}
	return nil, errors.Errorf("Unknown database: %s", path)
}
