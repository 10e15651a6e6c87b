// Command meshcsv 将网格映射收敛统计 CSV 按 mapping 拆分为独立文件，
// 供绘制收敛曲线使用。
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cfgpkg "meshcsv/internal/config"
	"meshcsv/internal/diag"
	"meshcsv/internal/pipeline"
	"meshcsv/pkg/contract"
)

var pipelineRun = pipeline.Run

// 退出码：0 成功；1 运行失败；2 参数错误；3 启动失败（配置/输入不可读）。
const (
	exitOK      = 0
	exitRun     = 1
	exitUsage   = 2
	exitStartup = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run 解析参数并执行一次拆分。stdout 仅输出分组键；日志与错误写 stderr。
func run(args []string, stdout, stderr io.Writer) int {
	code := exitOK
	var flagFile string

	cmd := &cobra.Command{
		Use:   "meshcsv",
		Short: "Split mapping convergence statistics into one CSV per mapping",
		Long: `meshcsv reads a CSV of gathered mapping statistics, checks that every row
targets the same mesh B, sorts rows by mesh A and writes <mapping>.csv
into the current directory for each mapping.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code = execute(cmd.Context(), flagFile, stdout, stderr)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagFile, "file", "f", cfgpkg.DefaultInput, "The CSV file containing the gathered stats.")
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fprintf(stderr, "参数错误: %v\n", err)
		return exitUsage
	}
	return code
}

func execute(ctx context.Context, file string, stdout, stderr io.Writer) int {
	start := time.Now()
	cfg := cfgpkg.Defaults()
	cfg.Input = file
	logger := diag.NewLogger(uuid.NewString(), cfg.Logging.Level, stderr)
	defer logger.Sync()

	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fprintf(stderr, "配置校验失败: %v\n", err)
		logger.Error("pipeline", string(diag.Classify(err)), "first error", &start)
		return exitStartup
	}

	f, err := os.Open(cfg.Input)
	if err != nil {
		err = fmt.Errorf("%w: %w", contract.ErrInput, err)
		fprintf(stderr, "无法读取输入文件: %v\n", err)
		logger.Error("pipeline", string(diag.Classify(err)), "first error", &start)
		return exitStartup
	}
	defer f.Close()

	set.Progress = diag.NewProgress(stdout)
	logger.DebugStart("config", "effective", string(set.FileID), "", map[string]string{
		"input":      cfg.Input,
		"output_dir": cfg.OutputDir,
		"mesh_a":     cfg.Columns.MeshA,
		"mesh_b":     cfg.Columns.MeshB,
		"mapping":    cfg.Columns.Mapping,
	})

	t := logger.StartWith("pipeline", "run", string(set.FileID), "")
	res, err := pipelineRun(ctx, comp, set, f, logger)
	if err != nil {
		code := diag.Classify(err)
		logger.Error("pipeline", string(code), "first error", &start)
		diag.IncOp("pipeline", "error", "error")
		if code != diag.CodeUnknown {
			diag.IncError("pipeline", string(code))
		}
		fprintf(stderr, "运行失败: %v\n", err)
		return exitRun
	}
	t.Finish("run", int64(res.Groups))
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	logger.DebugStart("metrics", "summary", string(set.FileID), "", diag.MetricsKV())
	return exitOK
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }
