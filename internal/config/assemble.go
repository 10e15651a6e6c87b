package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"meshcsv/internal/pipeline"
	"meshcsv/pkg/contract"
	"meshcsv/plugins/assembler/csvgroup"
	"meshcsv/plugins/reader/csvtable"
	"meshcsv/plugins/splitter/mapping"
	"meshcsv/plugins/writer/filesystem"
)

var validate = validator.New()

// Validate 对最小必要边界做静态校验，返回首个违例。
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("config: %w", err)
	}
	e := verrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("config: %s is required", e.Namespace())
	case "nefield":
		return fmt.Errorf("config: %s must differ from %s", e.Namespace(), e.Param())
	case "oneof":
		return fmt.Errorf("config: %s must be one of [%s], got %q", e.Namespace(), e.Param(), e.Value())
	default:
		return fmt.Errorf("config: %s failed %q", e.Namespace(), e.Tag())
	}
}

// Assemble 校验配置并构造流水线组件与运行设置。
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	cols := contract.Columns{MeshA: cfg.Columns.MeshA, MeshB: cfg.Columns.MeshB, Mapping: cfg.Columns.Mapping}

	w, err := filesystem.New(&filesystem.Options{OutputDir: cfg.OutputDir, Atomic: cfg.Writer.Atomic})
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("writer: %w", err)
	}
	comp := pipeline.Components{
		Loader:    csvtable.New(&csvtable.Options{Required: cols.Names()}),
		Splitter:  mapping.New(&mapping.Options{Columns: cols}),
		Assembler: csvgroup.New(nil),
		Writer:    w,
	}
	set := pipeline.Settings{FileID: contract.NormalizeFileID(cfg.Input)}
	return comp, set, nil
}
