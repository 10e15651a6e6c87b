package config

// Config: 运行期只读配置（一次构造，运行期不变）。
// 仅由命令行填充；无配置文件与环境变量来源。
type Config struct {
	// Input: 输入 CSV 路径。
	Input string `json:"input" validate:"required"`
	// OutputDir: 分组文件输出目录；命令行下固定为当前工作目录。
	OutputDir string  `json:"output_dir" validate:"required"`
	Columns   Columns `json:"columns"`
	Logging   Logging `json:"logging"`
	Writer    Writer  `json:"writer"`
}

// Columns: 必需列名，三者互不相同。
type Columns struct {
	MeshA   string `json:"mesh_a" validate:"required"`
	MeshB   string `json:"mesh_b" validate:"required,nefield=MeshA"`
	Mapping string `json:"mapping" validate:"required,nefield=MeshA,nefield=MeshB"`
}

// Logging: 仅保留日志等级可配置；输出固定为 stderr。
type Logging struct {
	Level string `json:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Writer: 文件系统写出选项。
type Writer struct {
	// Atomic: nil 表示默认（原子替换）。
	Atomic *bool `json:"atomic,omitempty"`
}
