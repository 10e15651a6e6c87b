package config

import "meshcsv/pkg/contract"

// DefaultInput 为未指定 --file 时读取的文件。
const DefaultInput = "test-statistics.csv"

// Defaults 返回默认配置：当前目录输出、约定列名、info 日志。
func Defaults() Config {
	cols := contract.DefaultColumns()
	return Config{
		Input:     DefaultInput,
		OutputDir: ".",
		Columns:   Columns{MeshA: cols.MeshA, MeshB: cols.MeshB, Mapping: cols.Mapping},
		Logging:   Logging{Level: "info"},
	}
}
