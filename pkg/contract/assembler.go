package contract

import (
	"context"
	"io"
)

// Assembler: 将单个 Group 编码为最终文件内容。
// 约束：
//  1. 首列为原始 Index；
//  2. 列序与 Group.Header 一致；
//  3. 相同输入产出字节一致。
type Assembler interface {
	Assemble(ctx context.Context, g Group) (io.Reader, error)
}
