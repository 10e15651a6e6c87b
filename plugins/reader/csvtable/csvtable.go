package csvtable

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"meshcsv/pkg/contract"
)

// Options 为 CSV Loader 的可选配置（最小必要）。
type Options struct {
	// BufSize 为读缓冲区大小（字节）。默认 64KiB。
	BufSize int `json:"buf_size"`
	// Required: 表头必须包含的列。为空时采用 contract.DefaultColumns()。
	Required []string `json:"required"`
}

// Loader 实现 contract.Loader。
type Loader struct {
	bufSize  int
	required []string
}

// New 创建 CSV Loader。
func New(opts *Options) *Loader {
	const defaultBuf = 64 * 1024
	b := defaultBuf
	if opts != nil && opts.BufSize > 0 {
		b = opts.BufSize
	}
	req := contract.DefaultColumns().Names()
	if opts != nil && len(opts.Required) > 0 {
		req = append([]string(nil), opts.Required...)
	}
	return &Loader{bufSize: b, required: req}
}

var _ contract.Loader = (*Loader)(nil)

const bom = "\ufeff"

// Load 读取完整表：首条记录为表头，其余为数据行。
func (l *Loader) Load(ctx context.Context, fileID contract.FileID, r io.Reader) (*contract.Table, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	cr := csv.NewReader(bufio.NewReaderSize(r, l.bufSize))
	// FieldsPerRecord=0：所有行须与表头字段数一致

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: no header row", contract.ErrInput, fileID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contract.ErrInput, fileID, err)
	}
	header = append([]string(nil), header...)
	header[0] = strings.TrimPrefix(header[0], bom)

	if missing := missingColumns(header, l.required); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing required columns %q", contract.ErrInput, fileID, missing)
	}

	t := &contract.Table{Source: fileID, Header: header}
	var idx contract.Index
	for {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", contract.ErrInput, fileID, err)
		}
		t.Rows = append(t.Rows, contract.Row{Index: idx, Fields: rec})
		idx++
	}
	return t, nil
}

func missingColumns(header, required []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, c := range required {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
