package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a pipeline file may contain.
type fileRoot struct {
	Pipeline []*pipelineBlock `hcl:"pipeline,block"`
	Database []*databaseBlock `hcl:"database,block"`
	Sources  []*stepBlock     `hcl:"source,block"`
	Steps    []*stepBlock     `hcl:"step,block"`
	Sinks    []*stepBlock     `hcl:"sink,block"`
	Remain   hcl.Body         `hcl:",remain"`
}

type pipelineBlock struct {
	Optimize   *bool    `hcl:"optimize,optional"`
	Strategies []string `hcl:"strategies,optional"`
}

type databaseBlock struct {
	Driver string `hcl:"driver"`
	DSN    string `hcl:"dsn"`
}

// stepBlock is shared by source, step, and sink blocks. Arguments stay
// unevaluated until the module's input struct is known.
type stepBlock struct {
	Kind      string    `hcl:"kind,label"`
	Name      string    `hcl:"name,label"`
	Body      hcl.Body  `hcl:",remain"`
	DeclRange hcl.Range `hcl:",def_range"`
}
