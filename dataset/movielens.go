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

// Package dataset fetches the MovieLens 1M archive, loads its flat files and
// partitions its users into train, validation and test sets.
package dataset

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorse-io/movielens/base/log"
	"github.com/gorse-io/movielens/common/datautil"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const (
	// DefaultURL is the source of the MovieLens 1M archive.
	DefaultURL = "https://files.grouplens.org/datasets/movielens/ml-1m.zip"
	// ArchiveName is the file name of the downloaded archive.
	ArchiveName = "ml-1m.zip"
	// ExtractName is the directory created by extracting the archive.
	ExtractName = "ml-1m"
)

// Options of Download.
type Options struct {
	Client   *http.Client
	URL      string
	Checksum string
	Progress bool
}

type Option func(*Options)

// WithClient sets the HTTP client used to fetch the archive.
func WithClient(client *http.Client) Option {
	return func(o *Options) {
		o.Client = client
	}
}

// WithURL overrides the archive source.
func WithURL(url string) Option {
	return func(o *Options) {
		o.URL = url
	}
}

// WithChecksum enables SHA-256 verification of the archive. An empty checksum disables it.
func WithChecksum(checksum string) Option {
	return func(o *Options) {
		o.Checksum = strings.ToLower(strings.TrimSpace(checksum))
	}
}

// WithProgress renders a progress bar while downloading.
func WithProgress(progress bool) Option {
	return func(o *Options) {
		o.Progress = progress
	}
}

func NewOptions(opts ...Option) Options {
	opt := Options{
		Client: http.DefaultClient,
		URL:    DefaultURL,
	}
	for _, o := range opts {
		o(&opt)
	}
	return opt
}

// ArchivePath returns the path of the downloaded archive under dir.
func ArchivePath(dir string) string {
	return filepath.Join(dir, ArchiveName)
}

// ExtractPath returns the path of the extracted dataset under dir.
func ExtractPath(dir string) string {
	return filepath.Join(dir, ExtractName)
}

// Download makes sure that the archive exists at <dir>/ml-1m.zip and that it has been
// extracted to <dir>/ml-1m. Only missing pieces are fetched or extracted, so calling it
// again after a successful call does nothing. Presence is checked by existence only.
func Download(dir string, opts ...Option) error {
	opt := NewOptions(opts...)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Trace(err)
	}

	zipPath := ArchivePath(dir)
	if exist, err := pathExists(zipPath); err != nil {
		return errors.Trace(err)
	} else if !exist {
		log.Logger().Info("downloading MovieLens 1M dataset", zap.String("path", zipPath))
		if err = datautil.DownloadFromURL(opt.Client, opt.URL, zipPath, opt.Progress); err != nil {
			return errors.Trace(err)
		}
		if err = verifyChecksum(zipPath, opt.Checksum); err != nil {
			// a fresh archive that fails verification is fetched again next time
			if removeErr := os.Remove(zipPath); removeErr != nil {
				log.Logger().Error("failed to remove archive", zap.Error(removeErr), zap.String("path", zipPath))
			}
			return errors.Trace(err)
		}
		log.Logger().Info("download completed", zap.String("path", zipPath))
	} else {
		log.Logger().Info("dataset already exists", zap.String("path", zipPath))
	}

	extractPath := ExtractPath(dir)
	if exist, err := pathExists(extractPath); err != nil {
		return errors.Trace(err)
	} else if !exist {
		if err = verifyChecksum(zipPath, opt.Checksum); err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("extracting dataset", zap.String("archive", zipPath), zap.String("path", extractPath))
		if _, err = datautil.Unzip(zipPath, dir); err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("extraction completed", zap.String("path", extractPath))
	} else {
		log.Logger().Info("extracted files already exist", zap.String("path", extractPath))
	}
	return nil
}

func verifyChecksum(path, checksum string) error {
	if checksum == "" {
		return nil
	}
	digest, err := datautil.SHA256File(path)
	if err != nil {
		return errors.Trace(err)
	}
	if digest != checksum {
		return errors.NotValidf("checksum of %s (expect %s, got %s)", path, checksum, digest)
	}
	return nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
