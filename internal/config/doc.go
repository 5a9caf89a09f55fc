// Package config defines the format-agnostic configuration model for a
// pipeline definition, along with the Loader and Converter interfaces that a
// concrete file format implements.
//
// The Model is the single source of truth for the builder package, which turns
// it into a runnable pipeline. The HCL implementation lives in internal/hcl.
package config
