package diag

import (
	"context"
	"errors"
	"os"

	"meshcsv/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown      Code = "unknown"
	CodeInput        Code = "input"
	CodePrecondition Code = "precondition"
	CodeOutput       Code = "output"
	CodeCancel       Code = "cancel"
	CodeIO           Code = "io"
)

// Classify 将错误归为最小分类。
// 仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, contract.ErrPrecondition) {
		return CodePrecondition
	}
	// ErrOutput 先于 ErrInput：输出错误可能同时包装底层 PathError
	if errors.Is(err, contract.ErrOutput) {
		return CodeOutput
	}
	if errors.Is(err, contract.ErrInput) {
		return CodeInput
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}
