// Copyright 2024 gorse Project Authors
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

package datautil

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorse-io/movielens/base/log"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// DownloadFromURL downloads src and saves the body to the file dst.
func DownloadFromURL(client *http.Client, src, dst string, progress bool) error {
	if client == nil {
		client = http.DefaultClient
	}
	log.Logger().Info("download dataset", zap.String("source", src), zap.String("destination", dst))
	response, err := client.Get(src)
	if err != nil {
		log.Logger().Error("failed to download", zap.Error(err), zap.String("source", src))
		return errors.Trace(err)
	}
	defer response.Body.Close()
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("failed to download %s: %s", src, response.Status)
	}
	// Create file
	if err = os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return errors.Trace(err)
	}
	output, err := os.Create(dst)
	if err != nil {
		log.Logger().Error("failed to create file", zap.Error(err), zap.String("filename", dst))
		return errors.Trace(err)
	}
	defer output.Close()
	// Save file
	var body io.Reader = response.Body
	if progress {
		pbReader := progressbar.NewReader(response.Body, progressbar.DefaultBytes(
			response.ContentLength,
			"Downloading "+filepath.Base(dst),
		))
		body = &pbReader
	}
	if _, err = io.Copy(output, body); err != nil {
		log.Logger().Error("failed to download", zap.Error(err), zap.String("source", src))
		return errors.Trace(err)
	}
	return errors.Trace(output.Close())
}

// Unzip extracts all entries of the zip file src into dst and returns the extracted paths.
func Unzip(src, dst string) ([]string, error) {
	var fileNames []string
	// Open zip file
	r, err := zip.OpenReader(src)
	if err != nil {
		return fileNames, errors.Annotatef(err, "failed to open archive %s", src)
	}
	defer r.Close()
	// Extract files
	for _, f := range r.File {
		filePath := filepath.Join(dst, f.Name)
		// Check for ZipSlip. More Info: http://bit.ly/2MsjAWE
		rel, err := filepath.Rel(dst, filePath)
		if err != nil {
			return fileNames, errors.Trace(err)
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			return fileNames, errors.Errorf("%s: illegal file path", filePath)
		}
		fileNames = append(fileNames, filePath)
		if f.FileInfo().IsDir() {
			if err = os.MkdirAll(filePath, os.ModePerm); err != nil {
				return fileNames, errors.Trace(err)
			}
			continue
		}
		if err = extractFile(f, filePath); err != nil {
			return fileNames, err
		}
	}
	return fileNames, nil
}

func extractFile(f *zip.File, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return errors.Trace(err)
	}
	rc, err := f.Open()
	if err != nil {
		return errors.Annotatef(err, "failed to open %s", f.Name)
	}
	defer rc.Close()
	outFile, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return errors.Trace(err)
	}
	if _, err = io.Copy(outFile, rc); err != nil {
		_ = outFile.Close()
		return errors.Annotatef(err, "failed to extract %s", f.Name)
	}
	return errors.Trace(outFile.Close())
}

// SHA256File returns the hex encoded SHA-256 digest of a file.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Trace(err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err = io.Copy(h, f); err != nil {
		return "", errors.Trace(err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
