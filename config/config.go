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

package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/movielens/dataset"
	"github.com/gorse-io/movielens/storage"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Config is the configuration of the toolkit.
type Config struct {
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Split    SplitConfig    `mapstructure:"split"`
	Database DatabaseConfig `mapstructure:"database"`
	Export   ExportConfig   `mapstructure:"export"`
}

// DatasetConfig is the configuration of dataset acquisition.
type DatasetConfig struct {
	Dir      string        `mapstructure:"dir" validate:"required"`
	URL      string        `mapstructure:"url" validate:"required,url"`
	Checksum string        `mapstructure:"checksum" validate:"omitempty,hexadecimal,len=64"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Progress bool          `mapstructure:"progress"`
}

// SplitConfig is the configuration of user splits.
type SplitConfig struct {
	Dir  string `mapstructure:"dir" validate:"required"`
	Seed int64  `mapstructure:"seed"`
}

// DatabaseConfig is the configuration of the data store.
type DatabaseConfig struct {
	DataStore   string      `mapstructure:"data_store" validate:"required,data_store"`
	TablePrefix string      `mapstructure:"table_prefix"`
	BatchSize   int         `mapstructure:"batch_size" validate:"gt=0"`
	MySQL       MySQLConfig `mapstructure:"mysql"`
}

// MySQLConfig tunes SQL connections. The isolation level only applies to MySQL.
type MySQLConfig struct {
	IsolationLevel  string        `mapstructure:"isolation_level" validate:"oneof=READ-UNCOMMITTED READ-COMMITTED REPEATABLE-READ SERIALIZABLE"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// StorageOptions converts the configuration to options of data.Open.
func (config *DatabaseConfig) StorageOptions() []storage.Option {
	return []storage.Option{
		storage.WithBatchSize(config.BatchSize),
		storage.WithIsolationLevel(config.MySQL.IsolationLevel),
		storage.WithMaxOpenConns(config.MySQL.MaxOpenConns),
		storage.WithMaxIdleConns(config.MySQL.MaxIdleConns),
		storage.WithConnMaxLifetime(config.MySQL.ConnMaxLifetime),
	}
}

// ExportConfig is the configuration of parquet export.
type ExportConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Dir:      "data",
			URL:      dataset.DefaultURL,
			Progress: true,
		},
		Split: SplitConfig{
			Dir:  "data/splits",
			Seed: 42,
		},
		Database: DatabaseConfig{
			DataStore: storage.SQLitePrefix + "data/movielens.db",
			BatchSize: 1000,
			MySQL: MySQLConfig{
				IsolationLevel: "READ-UNCOMMITTED",
			},
		},
		Export: ExportConfig{
			Dir: "data/parquet",
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [dataset]
	v.SetDefault("dataset.dir", defaultConfig.Dataset.Dir)
	v.SetDefault("dataset.url", defaultConfig.Dataset.URL)
	v.SetDefault("dataset.checksum", defaultConfig.Dataset.Checksum)
	v.SetDefault("dataset.timeout", defaultConfig.Dataset.Timeout)
	v.SetDefault("dataset.progress", defaultConfig.Dataset.Progress)
	// [split]
	v.SetDefault("split.dir", defaultConfig.Split.Dir)
	v.SetDefault("split.seed", defaultConfig.Split.Seed)
	// [database]
	v.SetDefault("database.data_store", defaultConfig.Database.DataStore)
	v.SetDefault("database.table_prefix", defaultConfig.Database.TablePrefix)
	v.SetDefault("database.batch_size", defaultConfig.Database.BatchSize)
	v.SetDefault("database.mysql.isolation_level", defaultConfig.Database.MySQL.IsolationLevel)
	v.SetDefault("database.mysql.max_open_conns", defaultConfig.Database.MySQL.MaxOpenConns)
	v.SetDefault("database.mysql.max_idle_conns", defaultConfig.Database.MySQL.MaxIdleConns)
	v.SetDefault("database.mysql.conn_max_lifetime", defaultConfig.Database.MySQL.ConnMaxLifetime)
	// [export]
	v.SetDefault("export.dir", defaultConfig.Export.Dir)
}

type configBinding struct {
	key string
	env string
}

var bindings = []configBinding{
	{"dataset.dir", "MOVIELENS_DATA_DIR"},
	{"dataset.url", "MOVIELENS_DATASET_URL"},
	{"split.dir", "MOVIELENS_SPLIT_DIR"},
	{"split.seed", "MOVIELENS_SPLIT_SEED"},
	{"database.data_store", "MOVIELENS_DATA_STORE"},
	{"database.table_prefix", "MOVIELENS_TABLE_PREFIX"},
	{"database.batch_size", "MOVIELENS_BATCH_SIZE"},
	{"database.mysql.isolation_level", "MOVIELENS_MYSQL_ISOLATION_LEVEL"},
	{"database.mysql.max_open_conns", "MOVIELENS_MYSQL_MAX_OPEN_CONNS"},
	{"database.mysql.max_idle_conns", "MOVIELENS_MYSQL_MAX_IDLE_CONNS"},
	{"database.mysql.conn_max_lifetime", "MOVIELENS_MYSQL_CONN_MAX_LIFETIME"},
	{"export.dir", "MOVIELENS_EXPORT_DIR"},
}

// LoadConfig loads configuration from a toml file. Environment variables override the
// file and defaults fill the rest. An empty path loads defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "failed to read config %s", path)
		}
	}
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

var dataStorePrefixes = []string{
	storage.SQLitePrefix,
	storage.MySQLPrefix,
	storage.PostgresPrefix,
	storage.PostgreSQLPrefix,
}

func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("data_store", func(fl validator.FieldLevel) bool {
		prefixes := lo.Filter(dataStorePrefixes, func(prefix string, _ int) bool {
			return strings.HasPrefix(fl.Field().String(), prefix)
		})
		return len(prefixes) > 0
	}); err != nil {
		return errors.Trace(err)
	}
	return validate.Struct(config)
}
