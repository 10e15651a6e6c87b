package csvgroup

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"meshcsv/pkg/contract"
)

// Options: 编码选项。
type Options struct {
	// IndexHeader: 首列（原始行号）的列名。默认空串，与常见表格库导出一致。
	IndexHeader string `json:"index_header"`
	// CRLF: 行尾使用 \r\n；默认 \n。
	CRLF bool `json:"crlf"`
}

type assembler struct {
	indexHeader string
	crlf        bool
}

// New 创建 CSV 组编码器。
func New(opts *Options) contract.Assembler {
	a := &assembler{}
	if opts != nil {
		a.indexHeader = opts.IndexHeader
		a.crlf = opts.CRLF
	}
	return a
}

// Assemble 输出表头（前置索引列）与组内各行；行首为原始 Index。
// 逐行字段数须与表头一致，否则返回 ErrInput。
func (a *assembler) Assemble(ctx context.Context, g contract.Group) (io.Reader, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = a.crlf

	rec := make([]string, 0, len(g.Header)+1)
	rec = append(rec, a.indexHeader)
	rec = append(rec, g.Header...)
	if err := w.Write(rec); err != nil {
		return nil, err
	}
	for _, r := range g.Rows {
		if len(r.Fields) != len(g.Header) {
			return nil, fmt.Errorf("%w: group %q row %d has %d fields, header has %d",
				contract.ErrInput, g.Key, r.Index, len(r.Fields), len(g.Header))
		}
		rec = rec[:0]
		rec = append(rec, strconv.FormatInt(int64(r.Index), 10))
		rec = append(rec, r.Fields...)
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &buf, nil
}

var _ contract.Assembler = (*assembler)(nil)
