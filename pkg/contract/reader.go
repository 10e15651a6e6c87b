package contract

import (
	"context"
	"io"
)

// Loader: 将单个 CSV 字节流解析为 Table。
// 约束：
// 1) 第一条记录为表头；
// 2) 缺少必需列、空输入或格式错误返回 ErrInput；
// 3) 不做排序或过滤，Index 按输入顺序分配；
// 4) 不在内部起并发。
type Loader interface {
	Load(ctx context.Context, fileID FileID, r io.Reader) (*Table, error)
}
