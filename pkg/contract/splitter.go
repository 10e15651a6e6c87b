package contract

import "context"

// Splitter: 校验 Table 并按分组键拆分为有序 Group 序列。
// 约束：
// 1) 校验失败时不产出任何 Group；
// 2) 组间不相交，并集为整表；
// 3) 组内顺序稳定；
// 4) 不修改入参 Table；无内部并发、幂等。
type Splitter interface {
	Split(ctx context.Context, t *Table) ([]Group, error)
}
