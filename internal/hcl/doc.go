// Package hcl provides the HCL implementation of the config.Loader and
// config.Converter interfaces. It parses pipeline files, translates their
// blocks into the format-agnostic config.Model, and binds step arguments to
// module input structs through go-cty.
package hcl
