package mapping

import (
	"context"
	"fmt"
	"slices"

	"meshcsv/pkg/contract"
)

// Options 为 mapping Splitter 的可选配置。
type Options struct {
	// Columns: 必需列名；零值字段使用 contract.DefaultColumns() 对应项。
	Columns contract.Columns `json:"columns"`
}

// Splitter 校验单一目标网格，按 mesh A 全局稳定排序后按 mapping 分组。
type Splitter struct {
	cols contract.Columns
}

// New 创建 mapping Splitter。
func New(opts *Options) *Splitter {
	cols := contract.DefaultColumns()
	if opts != nil {
		if opts.Columns.MeshA != "" {
			cols.MeshA = opts.Columns.MeshA
		}
		if opts.Columns.MeshB != "" {
			cols.MeshB = opts.Columns.MeshB
		}
		if opts.Columns.Mapping != "" {
			cols.Mapping = opts.Columns.Mapping
		}
	}
	return &Splitter{cols: cols}
}

var _ contract.Splitter = (*Splitter)(nil)

// Split 依次执行：单一目标校验 → 全局排序 → 分组。
// 校验失败时不返回任何 Group。
func (s *Splitter) Split(ctx context.Context, t *contract.Table) ([]contract.Group, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if t == nil {
		return nil, fmt.Errorf("%w: nil table", contract.ErrInput)
	}
	ia, ib, im := t.Column(s.cols.MeshA), t.Column(s.cols.MeshB), t.Column(s.cols.Mapping)
	if ia < 0 || ib < 0 || im < 0 {
		return nil, fmt.Errorf("%w: %s: missing required columns", contract.ErrInput, t.Source)
	}
	if err := ValidateSingleDestination(t, ib); err != nil {
		return nil, err
	}
	return GroupBy(t, SortBy(t, ia), im)
}

// ValidateSingleDestination 要求列 col 恰有一个不同取值。
func ValidateSingleDestination(t *contract.Table, col int) error {
	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		seen[distinctKey(r.Fields[col])] = struct{}{}
	}
	if len(seen) != 1 {
		return &contract.PreconditionError{Column: t.Header[col], Count: len(seen)}
	}
	return nil
}

// SortBy 返回按列 col 自然序升序的新行切片（稳定）；不修改 t。
func SortBy(t *contract.Table, col int) []contract.Row {
	vals := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		vals[i] = r.Fields[col]
	}
	less := naturalOrder(vals)
	rows := slices.Clone(t.Rows)
	slices.SortStableFunc(rows, func(a, b contract.Row) int {
		return less(a.Fields[col], b.Fields[col])
	})
	return rows
}

// GroupBy 按列 col 分组；组序为键的自然序，组内保持 rows 的相对顺序。
// 键缺失的行无法映射到输出文件，返回 ErrInput。
func GroupBy(t *contract.Table, rows []contract.Row, col int) ([]contract.Group, error) {
	byKey := make(map[string][]contract.Row)
	var keys []string
	for _, r := range rows {
		k := r.Fields[col]
		if isMissing(k) {
			return nil, fmt.Errorf("%w: %s: row %d has no %q value", contract.ErrInput, t.Source, r.Index, t.Header[col])
		}
		if _, ok := byKey[k]; !ok {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], r)
	}
	slices.SortFunc(keys, naturalOrder(keys))
	groups := make([]contract.Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, contract.Group{Key: k, Header: t.Header, Rows: byKey[k]})
	}
	return groups, nil
}
