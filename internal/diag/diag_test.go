package diag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"meshcsv/pkg/contract"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), "line %q", line)
		out = append(out, m)
	}
	return out
}

func TestLoggerStartFinish(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("corr-1", "info", &buf)
	tm := l.StartWith("writer", "write group", "stats.csv", "nn")
	tm.Finish("written", 3)

	evs := decodeLines(t, &buf)
	require.Len(t, evs, 2)
	assert.Equal(t, "info", evs[0]["level"])
	assert.Equal(t, "corr-1", evs[0]["corr_id"])
	assert.Equal(t, "writer", evs[0]["comp"])
	assert.Equal(t, "start", evs[0]["stage"])
	assert.Equal(t, "nn", evs[0]["group"])
	assert.Equal(t, "stats.csv", evs[0]["file_id"])
	assert.Equal(t, "finish", evs[1]["stage"])
	assert.Equal(t, float64(3), evs[1]["count"])
	_, err := time.Parse(time.RFC3339, evs[1]["ts"].(string))
	assert.NoError(t, err)
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("", "error", &buf)
	l.Start("pipeline", "run").Finish("run", 0)
	l.DebugStart("config", "effective", "", "", map[string]string{"k": "v"})
	start := time.Now()
	l.Error("pipeline", string(CodeInput), "first error", &start)

	evs := decodeLines(t, &buf)
	require.Len(t, evs, 1)
	assert.Equal(t, "error", evs[0]["level"])
	assert.Equal(t, "input", evs[0]["code"])
	_, hasCorr := evs[0]["corr_id"]
	assert.False(t, hasCorr)
}

func TestLoggerDebugKV(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("c", "debug", &buf)
	l.DebugStart("config", "effective", "", "", map[string]string{"input": "a.csv"})
	evs := decodeLines(t, &buf)
	require.Len(t, evs, 1)
	kv, ok := evs[0]["kv"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a.csv", kv["input"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestNilLoggerSafe(t *testing.T) {
	var l *Logger
	tm := l.Start("x", "y")
	assert.Nil(t, tm)
	tm.Finish("z", 1)
	assert.Zero(t, tm.Since())
	l.Error("x", "y", "z", nil)
	l.DebugStart("x", "y", "", "", nil)
	l.Sync()
	assert.Empty(t, l.CorrID())
}

func TestClassify(t *testing.T) {
	pathErr := &fs.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, CodeUnknown},
		{"cancel", context.Canceled, CodeCancel},
		{"deadline", fmt.Errorf("w: %w", context.DeadlineExceeded), CodeCancel},
		{"precondition", &contract.PreconditionError{Column: "mesh B", Count: 2}, CodePrecondition},
		{"input", fmt.Errorf("%w: bad header", contract.ErrInput), CodeInput},
		{"output", fmt.Errorf("%w: %w", contract.ErrOutput, pathErr), CodeOutput},
		{"path invalid", contract.ErrPathInvalid, CodeOutput},
		{"io", pathErr, CodeIO},
		{"other", errors.New("x"), CodeUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Classify(c.err))
		})
	}
}

func TestMetrics(t *testing.T) {
	before := testutil.ToFloat64(opTotal.WithLabelValues("test", "finish", "success"))
	IncOp("test", "finish", "success")
	IncOp("test", "finish", "success")
	assert.Equal(t, before+2, testutil.ToFloat64(opTotal.WithLabelValues("test", "finish", "success")))

	IncError("test", string(CodeOutput))
	assert.GreaterOrEqual(t, testutil.ToFloat64(errorTotal.WithLabelValues("test", "output")), 1.0)

	n, err := testutil.GatherAndCount(Registry(), "meshcsv_error_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	ObserveDuration("test", "finish", 12)
	kv := MetricsKV()
	assert.NotEmpty(t, kv["meshcsv_op_total{comp=test,result=success,stage=finish}"])
	assert.NotEmpty(t, kv["meshcsv_op_duration_ms{comp=test,stage=finish}"])
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)
	p.Group("nn")
	p.Group("rbf\nx")
	assert.Equal(t, "nn\nrbf x\n", buf.String())
	assert.Equal(t, 2, p.Groups())
}

type failWriter struct{ n int }

func (f *failWriter) Write(b []byte) (int, error) {
	f.n++
	return 0, errors.New("closed")
}

func TestProgressDisablesOnWriteError(t *testing.T) {
	fw := &failWriter{}
	p := NewProgress(fw)
	p.Group("a")
	p.Group("b")
	assert.Equal(t, 1, fw.n)

	var nilP *Progress
	nilP.Group("x")
	assert.Zero(t, nilP.Groups())
	NewProgress(nil).Group("x")
}
