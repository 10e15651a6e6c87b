package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"meshcsv/internal/diag"
	"meshcsv/pkg/contract"
)

// - 单线程：各阶段严格串行，组件均为同步实现。
// - 首错即停：任一阶段出错立即返回，已写出的分组文件保留。
// - 校验先于写出：前置条件失败时不触碰任何输出文件。

// Components 聚合运行所需的原子组件。
type Components struct {
	Loader    contract.Loader
	Splitter  contract.Splitter
	Assembler contract.Assembler
	Writer    contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	// FileID: 输入标识，仅用于日志与错误信息。
	FileID contract.FileID
	// Progress: 每个分组写出前打印其键；nil 表示不输出。
	Progress *diag.Progress
}

// Result 汇总一次运行的产出。
type Result struct {
	Rows      int
	Groups    int
	Artifacts []contract.ArtifactID
}

// Run 执行完整流水线：Loader → Splitter → (逐组) Progress → Assembler → Writer。
func Run(ctx context.Context, comp Components, set Settings, in io.Reader, logger *diag.Logger) (Result, error) {
	var res Result
	if err := sanity(comp, in); err != nil {
		return res, fmt.Errorf("sanity: %w", err)
	}
	fileID := string(set.FileID)

	lt := logger.StartWith("loader", "load", fileID, "")
	tbl, err := comp.Loader.Load(ctx, set.FileID, in)
	if err != nil {
		return res, stageErr(logger, "loader", "load", fileID, "", err)
	}
	res.Rows = len(tbl.Rows)
	finish(lt, "loader", "load", int64(res.Rows))

	st := logger.StartWith("splitter", "split", fileID, "")
	groups, err := comp.Splitter.Split(ctx, tbl)
	if err != nil {
		return res, stageErr(logger, "splitter", "split", fileID, "", err)
	}
	res.Groups = len(groups)
	finish(st, "splitter", "split", int64(res.Groups))

	for _, g := range groups {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}
		set.Progress.Group(g.Key)

		at := logger.StartWith("assembler", "assemble", fileID, g.Key)
		r, err := comp.Assembler.Assemble(ctx, g)
		if err != nil {
			return res, stageErr(logger, "assembler", "assemble", fileID, g.Key, err)
		}
		finish(at, "assembler", "assemble", int64(len(g.Rows)))

		id := contract.ArtifactFor(g.Key)
		wt := logger.StartWith("writer", "write", fileID, g.Key)
		if err := comp.Writer.Write(ctx, id, r); err != nil {
			return res, stageErr(logger, "writer", "write", fileID, g.Key, err)
		}
		finish(wt, "writer", "write", int64(len(g.Rows)))
		res.Artifacts = append(res.Artifacts, id)
	}
	return res, nil
}

func sanity(comp Components, in io.Reader) error {
	if comp.Loader == nil || comp.Splitter == nil || comp.Assembler == nil || comp.Writer == nil {
		return errors.New("component missing")
	}
	if in == nil {
		return errors.New("input reader missing")
	}
	return nil
}

func finish(t *diag.Timer, comp, stage string, count int64) {
	t.Finish(stage, count)
	diag.IncOp(comp, "finish", "success")
	diag.ObserveDuration(comp, stage, t.Since().Milliseconds())
}

// stageErr 记录错误事件与指标，并以 "<comp> <stage>: " 前缀包装。
func stageErr(logger *diag.Logger, comp, stage, fileID, group string, err error) error {
	code := diag.Classify(err)
	logger.ErrorWith(comp, string(code), stage+" failed", nil, fileID, group)
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
	return fmt.Errorf("%s %s: %w", comp, stage, err)
}
