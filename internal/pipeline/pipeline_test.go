package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"meshcsv/internal/diag"
	"meshcsv/pkg/contract"
	"meshcsv/plugins/assembler/csvgroup"
	"meshcsv/plugins/reader/csvtable"
	"meshcsv/plugins/splitter/mapping"
	"meshcsv/plugins/writer/filesystem"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func components(t *testing.T, dir string) Components {
	t.Helper()
	w, err := filesystem.New(&filesystem.Options{OutputDir: dir})
	require.NoError(t, err)
	return Components{
		Loader:    csvtable.New(nil),
		Splitter:  mapping.New(nil),
		Assembler: csvgroup.New(nil),
		Writer:    w,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRunScenario(t *testing.T) {
	dir := t.TempDir()
	in := "mesh A,mesh B,mapping\n3,x,m1\n1,x,m1\n2,x,m2\n"
	var out bytes.Buffer
	res, err := Run(context.Background(), components(t, dir),
		Settings{FileID: "in.csv", Progress: diag.NewProgress(&out)}, strings.NewReader(in), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Groups)
	assert.Equal(t, []contract.ArtifactID{"m1.csv", "m2.csv"}, res.Artifacts)
	assert.Equal(t, "m1\nm2\n", out.String())
	assert.Equal(t, ",mesh A,mesh B,mapping\n1,1,x,m1\n0,3,x,m1\n", readFile(t, filepath.Join(dir, "m1.csv")))
	assert.Equal(t, ",mesh A,mesh B,mapping\n2,2,x,m2\n", readFile(t, filepath.Join(dir, "m2.csv")))
}

func TestRunPreconditionWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := "mesh A,mesh B,mapping\n1,x,m1\n2,y,m1\n"
	var out bytes.Buffer
	_, err := Run(context.Background(), components(t, dir),
		Settings{FileID: "in.csv", Progress: diag.NewProgress(&out)}, strings.NewReader(in), nil)
	require.Error(t, err)

	var pe *contract.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Count)
	assert.True(t, strings.HasPrefix(err.Error(), "splitter split: "))
	assert.Empty(t, out.String())

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestRunLogsEvents(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	logger := diag.NewLogger("c", "info", &logs)
	_, err := Run(context.Background(), components(t, dir), Settings{FileID: "in.csv"},
		strings.NewReader("mesh A,mesh B,mapping\n1,x,nn\n"), logger)
	require.NoError(t, err)
	for _, want := range []string{`"comp":"loader"`, `"comp":"splitter"`, `"comp":"assembler"`, `"comp":"writer"`, `"group":"nn"`} {
		assert.Contains(t, logs.String(), want)
	}
}

func TestRunInputError(t *testing.T) {
	var logs bytes.Buffer
	logger := diag.NewLogger("c", "error", &logs)
	_, err := Run(context.Background(), components(t, t.TempDir()), Settings{FileID: "in.csv"},
		strings.NewReader("a,b\n1,2\n"), logger)
	assert.ErrorIs(t, err, contract.ErrInput)
	assert.Contains(t, logs.String(), `"code":"input"`)
}

type failingWriter struct {
	failOn contract.ArtifactID
	inner  contract.Writer
}

func (f failingWriter) Write(ctx context.Context, id contract.ArtifactID, r io.Reader) error {
	if id == f.failOn {
		return contract.ErrOutput
	}
	return f.inner.Write(ctx, id, r)
}

// 失败前已写出的分组保留在磁盘上。
func TestRunOutputErrorKeepsEarlierGroups(t *testing.T) {
	dir := t.TempDir()
	comp := components(t, dir)
	comp.Writer = failingWriter{failOn: "m2.csv", inner: comp.Writer}
	in := "mesh A,mesh B,mapping\n1,x,m1\n2,x,m2\n3,x,m3\n"
	res, err := Run(context.Background(), comp, Settings{FileID: "in.csv"}, strings.NewReader(in), nil)
	assert.ErrorIs(t, err, contract.ErrOutput)
	assert.Equal(t, []contract.ArtifactID{"m1.csv"}, res.Artifacts)
	_, statErr := os.Stat(filepath.Join(dir, "m1.csv"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(dir, "m3.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunInvalidKey(t *testing.T) {
	dir := t.TempDir()
	in := "mesh A,mesh B,mapping\n1,x,a/b\n"
	_, err := Run(context.Background(), components(t, dir), Settings{FileID: "in.csv"}, strings.NewReader(in), nil)
	assert.ErrorIs(t, err, contract.ErrPathInvalid)
}

func TestRunDeterministic(t *testing.T) {
	in := "mesh A,mesh B,mapping,err\n0.3,t,nn,1\n0.1,t,rbf,2\n0.2,t,nn,3\n0.1,t,nn,4\n"
	var outputs [2]map[string]string
	for i := range outputs {
		dir := t.TempDir()
		_, err := Run(context.Background(), components(t, dir), Settings{FileID: "in.csv"}, strings.NewReader(in), nil)
		require.NoError(t, err)
		outputs[i] = map[string]string{
			"nn":  readFile(t, filepath.Join(dir, "nn.csv")),
			"rbf": readFile(t, filepath.Join(dir, "rbf.csv")),
		}
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, ",mesh A,mesh B,mapping,err\n3,0.1,t,nn,4\n2,0.2,t,nn,3\n0,0.3,t,nn,1\n", outputs[0]["nn"])
}

func TestRunSanity(t *testing.T) {
	_, err := Run(context.Background(), Components{}, Settings{}, strings.NewReader(""), nil)
	assert.ErrorContains(t, err, "component missing")
	_, err = Run(context.Background(), components(t, t.TempDir()), Settings{}, nil, nil)
	assert.ErrorContains(t, err, "input reader missing")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, components(t, t.TempDir()), Settings{}, strings.NewReader("mesh A,mesh B,mapping\n1,x,m\n"), nil)
	assert.True(t, errors.Is(err, context.Canceled))
}
