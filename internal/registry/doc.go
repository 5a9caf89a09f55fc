// Package registry provides the central "glue" for the module system.
//
// The Registry maps the kinds used in pipeline files (e.g. `step
// "rename_columns" "x"`) to the compiled Go code that builds the step: a
// constructor for the module's input struct and a Build function. Modules
// add themselves through the Module interface.
//
// During application startup the registry is populated and then validated,
// so that a module with a malformed input struct fails fast instead of at the
// first run.
package registry
