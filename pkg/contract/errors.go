package contract

import (
	"errors"
	"fmt"
)

// 最小错误分类；组件以 %w 包装，调用方用 errors.Is 判定。
var (
	// ErrInput: 输入缺失、不可读或格式非法（含缺少必需列）。
	ErrInput = errors.New("input error")
	// ErrPrecondition: 数据集不满足前置条件（mesh B 取值不唯一）。
	ErrPrecondition = errors.New("precondition failed")
	// ErrOutput: 输出不可写。
	ErrOutput = errors.New("output error")
	// ErrPathInvalid: 分组键映射为无效文件名（含分隔符、NUL 或 '.'/'..'）。
	ErrPathInvalid = fmt.Errorf("%w: path invalid", ErrOutput)
)

// PreconditionError 报告某列出现的不同取值个数。
type PreconditionError struct {
	Column string
	Count  int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("there are %d to-meshes (distinct %q values) but only 1 is allowed, fix your dataset", e.Count, e.Column)
}

// Is 使 errors.Is(err, ErrPrecondition) 成立。
func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }
