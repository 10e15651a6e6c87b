package contract

// FileID: 逻辑文档ID（通常为路径，需规范化，跨平台一致）。
type FileID string

// Index: 行在输入表中的原始位置（0..n-1，不含表头）。
// 输出时作为首列写出，重排后保持不变。
type Index int64

// Columns: 必需列的列名。
type Columns struct {
	MeshA   string
	MeshB   string
	Mapping string
}

// DefaultColumns 返回统计文件约定的列名。
func DefaultColumns() Columns {
	return Columns{MeshA: "mesh A", MeshB: "mesh B", Mapping: "mapping"}
}

// Names 按 mesh A / mesh B / mapping 顺序返回列名。
func (c Columns) Names() []string {
	return []string{c.MeshA, c.MeshB, c.Mapping}
}

// Row: 单行记录。Fields 与 Table.Header 一一对应，原样透传。
type Row struct {
	Index  Index
	Fields []string
}

// Table: 从单个 CSV 读入的完整表。
// 约束：
// - Header 保持输入列序；
// - Rows 按输入顺序，Index 自 0 严格递增；
// - 每行 Fields 长度等于 len(Header)。
type Table struct {
	Source FileID
	Header []string
	Rows   []Row
}

// Column 返回列名所在位置；不存在时返回 -1。
func (t *Table) Column(name string) int {
	if t == nil {
		return -1
	}
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Group: 共享同一 mapping 值的行集合。
// Rows 保持全局排序后的相对顺序（按 mesh A 升序）。
type Group struct {
	Key    string
	Header []string
	Rows   []Row
}
