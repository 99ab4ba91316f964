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

package main

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorse-io/movielens/dataset"
	"github.com/gorse-io/movielens/storage/data"
	"github.com/gorse-io/movielens/storage/parquet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ratingsFixture = "1::1193::5::978300760\n1::661::3::978302109\n2::1193::4::978298413\n"
	usersFixture   = "1::F::1::10::48067\n2::M::56::16::70072\n"
	moviesFixture  = "1193::One Flew Over the Cuckoo's Nest (1975)::Drama\n661::James and the Giant Peach (1996)::Animation|Children's|Musical\n"
)

func execute(t *testing.T, args ...string) string {
	buf := new(bytes.Buffer)
	command := newRootCommand()
	command.SetOut(buf)
	command.SetArgs(args)
	require.NoError(t, command.Execute())
	return buf.String()
}

func setupEnv(t *testing.T, dir string) {
	t.Setenv("MOVIELENS_DATA_DIR", dir)
	t.Setenv("MOVIELENS_SPLIT_DIR", filepath.Join(dir, "splits"))
	t.Setenv("MOVIELENS_EXPORT_DIR", filepath.Join(dir, "parquet"))
	t.Setenv("MOVIELENS_DATA_STORE", "sqlite://"+filepath.Join(dir, "movielens.db"))
}

func setupData(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dataset.ExtractPath(dir), os.ModePerm))
	for name, content := range map[string]string{
		dataset.RatingsFile: ratingsFixture,
		dataset.UsersFile:   usersFixture,
		dataset.MoviesFile:  moviesFixture,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dataset.ExtractPath(dir), name), []byte(content), 0644))
	}
	setupEnv(t, dir)
	return dir
}

func newArchive(t *testing.T, users int) []byte {
	var builder strings.Builder
	for i := 1; i <= users; i++ {
		builder.WriteString(fmt.Sprintf("%d::M::25::%d::%05d\n", i, i%21, 10000+i))
	}
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for name, content := range map[string]string{
		dataset.RatingsFile: ratingsFixture,
		dataset.UsersFile:   builder.String(),
		dataset.MoviesFile:  moviesFixture,
	} {
		f, err := w.Create(dataset.ExtractName + "/" + name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestVersion(t *testing.T) {
	assert.Contains(t, execute(t, "version"), "Version:")
	assert.Contains(t, execute(t, "--version"), "Version:")
}

func TestLabels(t *testing.T) {
	out := execute(t, "labels")
	assert.Contains(t, out, "Under 18")
	assert.Contains(t, out, "writer")
}

func TestRoot(t *testing.T) {
	archive := newArchive(t, 10)
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write(archive)
	}))
	defer server.Close()
	dir := filepath.Join(t.TempDir(), "data")
	setupEnv(t, dir)
	t.Setenv("MOVIELENS_DATASET_URL", server.URL+"/ml-1m.zip")

	out := execute(t)
	assert.Equal(t, int32(1), requests.Load())
	assert.FileExists(t, dataset.ArchivePath(dir))
	// heads of all tables
	assert.Contains(t, out, "Ratings Data:")
	assert.Contains(t, out, "978300760")
	assert.Contains(t, out, "Users Data:")
	assert.Contains(t, out, "10001")
	assert.NotContains(t, out, "10006")
	assert.Contains(t, out, "Movies Data:")
	assert.Contains(t, out, "Cuckoo's Nest")
	// user splits
	for _, name := range []string{dataset.TrainUsersFile, dataset.ValUsersFile, dataset.TestUsersFile} {
		assert.FileExists(t, filepath.Join(dir, "splits", name))
	}
	split, err := dataset.LoadUserSplits(filepath.Join(dir, "splits"))
	require.NoError(t, err)
	assert.Len(t, split.Train, 6)
	assert.Len(t, split.Val, 2)
	assert.Len(t, split.Test, 2)

	// a second run reuses the archive
	execute(t)
	assert.Equal(t, int32(1), requests.Load())
}

func TestLoad(t *testing.T) {
	setupData(t)
	out := execute(t, "load", "--head", "1")
	assert.Contains(t, out, "Ratings Data:")
	assert.Contains(t, out, "978300760")
	assert.NotContains(t, out, "978302109")
	assert.Contains(t, out, "70072")
	assert.Contains(t, out, "Cuckoo's Nest")

	// flags are not shared between runs
	out = execute(t, "load")
	assert.Contains(t, out, "978302109")
}

func TestSplit(t *testing.T) {
	dir := setupData(t)
	execute(t, "split", "--seed", "7")
	split, err := dataset.LoadUserSplits(filepath.Join(dir, "splits"))
	require.NoError(t, err)
	assert.Equal(t, 2, split.Len())
}

func TestExport(t *testing.T) {
	dir := setupData(t)
	execute(t, "export")
	n, err := parquet.CountRows(filepath.Join(dir, "parquet", parquet.RatingsFile))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestImport(t *testing.T) {
	dir := setupData(t)
	t.Setenv("MOVIELENS_TABLE_PREFIX", "ml_")
	execute(t, "import", "--batch-size", "2")

	database, err := data.Open("sqlite://"+filepath.Join(dir, "movielens.db"), "ml_")
	require.NoError(t, err)
	defer database.Close()
	ctx := context.Background()
	n, err := database.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = database.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = database.CountFeedback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	user, err := database.GetUser(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "56+", user.Labels["age"])
}
