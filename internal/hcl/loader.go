package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/fsutil"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	environ func() []string
}

// NewLoader creates a loader that evaluates `env` from the process
// environment.
func NewLoader() *Loader {
	return &Loader{environ: defaultEnviron}
}

// WithEnviron returns a loader that reads `env` from environ instead.
func (l *Loader) WithEnviron(environ []string) *Loader {
	return &Loader{environ: func() []string { return environ }}
}

// Load parses every .hcl file under paths, in lexical order, and merges the
// blocks into one model. Later pipeline and database blocks override
// earlier ones.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	if len(hclFiles) == 0 {
		return nil, nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	evalCtx := NewEvalContext(l.environ())
	model := config.NewModel()
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if diags := unexpectedContent(root.Remain); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, p := range root.Pipeline {
			if p.Optimize != nil {
				model.Pipeline.Optimize = p.Optimize
			}
			if p.Strategies != nil {
				model.Pipeline.Strategies = p.Strategies
			}
		}
		for _, d := range root.Database {
			model.Database = &config.Database{Driver: d.Driver, DSN: d.DSN}
		}

		for _, group := range []struct {
			role   string
			blocks []*stepBlock
			into   *[]*config.Block
		}{
			{config.RoleSource, root.Sources, &model.Sources},
			{config.RoleStep, root.Steps, &model.Steps},
			{config.RoleSink, root.Sinks, &model.Sinks},
		} {
			for _, sb := range group.blocks {
				b, err := translateBlock(group.role, sb)
				if err != nil {
					return nil, nil, err
				}
				*group.into = append(*group.into, b)
			}
		}
		logger.Debug("Loaded HCL file.", "file", file)
	}

	logger.Debug("HCL loading complete.",
		"sources", len(model.Sources),
		"steps", len(model.Steps),
		"sinks", len(model.Sinks),
		"database", model.Database != nil,
	)
	return model, NewConverter(evalCtx), nil
}

// translateBlock converts a decoded block into the agnostic model.
func translateBlock(role string, sb *stepBlock) (*config.Block, error) {
	attrs, diags := sb.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s %q %q: %w", role, sb.Kind, sb.Name, diags)
	}
	args := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		args[name] = attr.Expr
	}
	return &config.Block{
		Role:      role,
		Kind:      sb.Kind,
		Name:      sb.Name,
		Arguments: args,
		DeclRange: sb.DeclRange,
	}, nil
}

// unexpectedContent reports attributes or blocks the root schema does not
// know about.
func unexpectedContent(remain hcl.Body) hcl.Diagnostics {
	if remain == nil {
		return nil
	}
	attrs, diags := remain.JustAttributes()
	if diags.HasErrors() {
		return diags
	}
	for name, attr := range attrs {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported argument",
			Detail:   fmt.Sprintf("An argument named %q is not expected at the top level.", name),
			Subject:  attr.NameRange.Ptr(),
		})
	}
	return diags
}

// findAllHCLFiles walks all given paths and returns a sorted, de-duplicated
// list of .hcl files.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			allFiles = append(allFiles, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) != ".hcl" {
				return nil, fmt.Errorf("%s is not an .hcl file", path)
			}
			add(path)
			continue
		}

		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
