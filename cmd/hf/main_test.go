package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/hupe1980/hfabric/model"
	"github.com/hupe1980/hfabric/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command line and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	base := []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--env-file", filepath.Join(dir, "missing.env"),
		"--log-level", "error",
	}
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(append(base, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func buildFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw")
	testutil.WriteNDJSON(t, raw, "chains.ndjson", testutil.ChainRecords()...)
	pkg := filepath.Join(dir, "pkg")

	out, err := run(t, "build", raw, pkg, "--name", "chains", "--version", "1", "--compression", "lz4")
	require.NoError(t, err)
	assert.Contains(t, out, "4 nodes")
	return pkg
}

func TestBuildAndQuery(t *testing.T) {
	pkg := buildFixture(t)

	out, err := run(t, "-p", pkg, "get", "chains_1_1")
	require.NoError(t, err)
	var rec model.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "chains_1_1", rec.ID)

	out, err = run(t, "-p", pkg, "search", "shield", "--lang", "english")
	require.NoError(t, err)
	var hits []model.Hit
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "chains_1_2", hits[0].ID)

	out, err = run(t, "-p", pkg, "search", "shie", "--lang", "english", "--mode", "prefix", "--terms")
	require.NoError(t, err)
	var m struct {
		Terms []string `json:"terms"`
		IDs   []string `json:"ids"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, []string{"shield"}, m.Terms)
	assert.Equal(t, []string{"chains_1_2"}, m.IDs)

	out, err = run(t, "-p", pkg, "rawi", "malik", "-r", "students")
	require.NoError(t, err)
	var students []string
	require.NoError(t, json.Unmarshal([]byte(out), &students))
	assert.Equal(t, []string{"Qutayba", "Yahya"}, students)

	out, err = run(t, "-p", pkg, "feature", "narrator_count", "chains_1_1")
	require.NoError(t, err)
	assert.Contains(t, out, `"value": 3`)

	out, err = run(t, "-p", pkg, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "ok chains@1")
}

func TestQueryErrors(t *testing.T) {
	pkg := buildFixture(t)

	_, err := run(t, "-p", pkg, "get", "chains_9_9")
	assert.Error(t, err)

	_, err = run(t, "-p", pkg, "search", "x", "--lang", "latin")
	assert.Error(t, err)

	_, err = run(t, "-p", pkg, "search", "x", "--mode", "fuzzy")
	assert.Error(t, err)

	_, err = run(t, "-p", pkg, "rawi", "Malik", "-r", "cousins")
	assert.Error(t, err)

	_, err = run(t, "-p", t.TempDir(), "inspect")
	assert.Error(t, err)

	_, err = run(t, "--remote", "inspect")
	assert.ErrorIs(t, err, errNoRemote)
}

func TestPublishToDirectory(t *testing.T) {
	pkg := buildFixture(t)
	mirror := filepath.Join(t.TempDir(), "mirror")

	out, err := run(t, "publish", pkg, "--to", mirror)
	require.NoError(t, err)
	assert.Contains(t, out, "published chains@1")

	_, err = os.Stat(filepath.Join(mirror, "meta.json"))
	require.NoError(t, err)

	out, err = run(t, "-p", mirror, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, `"node_count": 4`)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
