package hcl

import (
	"context"
	"fmt"
	"math/big"
	"reflect"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// TagName is the struct tag module inputs use to name their arguments.
const TagName = "flow"

var ctyValueType = reflect.TypeOf(cty.Value{})

// Converter is the HCL implementation of config.Converter.
type Converter struct {
	evalCtx *hcl.EvalContext
}

// NewConverter creates a converter that evaluates in evalCtx.
func NewConverter(evalCtx *hcl.EvalContext) *Converter {
	return &Converter{evalCtx: evalCtx}
}

// EvalContext returns the context step arguments are evaluated in.
func (c *Converter) EvalContext() *hcl.EvalContext {
	return c.evalCtx
}

// InputField describes one tagged field of a module input struct.
type InputField struct {
	Name     string
	Optional bool
	Index    int
	Type     reflect.Type
}

// InputFields lists the tagged fields of a struct type.
func InputFields(t reflect.Type) ([]InputField, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input must be a struct, got %s", t)
	}
	var fields []InputField
	for i := range t.NumField() {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup(TagName)
		if !ok || tag == "-" {
			continue
		}
		if !f.IsExported() {
			return nil, fmt.Errorf("field %s is tagged but not exported", f.Name)
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			return nil, fmt.Errorf("field %s has an empty %s tag", f.Name, TagName)
		}
		fields = append(fields, InputField{
			Name:     name,
			Optional: opts == "optional",
			Index:    i,
			Type:     f.Type,
		})
	}
	return fields, nil
}

// DecodeBody evaluates args and populates the tagged fields of target.
// Optional fields keep their preset value when the argument is absent.
// Arguments that match no field are an error.
func (c *Converter) DecodeBody(ctx context.Context, target any, args map[string]hcl.Expression, evalCtx *hcl.EvalContext) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting HCL body decoding.")

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Pointer || structVal.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer, got %T", target)
	}
	fields, err := InputFields(structVal.Type())
	if err != nil {
		return err
	}
	if evalCtx == nil {
		evalCtx = c.evalCtx
	}
	structVal = structVal.Elem()

	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.Name] = struct{}{}
		expr, provided := args[f.Name]
		if !provided {
			if !f.Optional {
				return fmt.Errorf("missing required argument %q", f.Name)
			}
			continue
		}

		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return diags
		}
		if err := c.decode(ctx, val, structVal.Field(f.Index).Addr().Interface()); err != nil {
			return fmt.Errorf("failed to decode argument %q: %w", f.Name, err)
		}
	}

	var unknown []string
	for name := range args {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fmt.Errorf("unsupported arguments: %s", strings.Join(unknown, ", "))
	}

	logger.Debug("Finished HCL body decoding successfully.")
	return nil
}

// decode converts val to the Go type goVal points at.
func (c *Converter) decode(ctx context.Context, val cty.Value, goVal any) error {
	logger := ctxlog.FromContext(ctx)
	valPtr := reflect.ValueOf(goVal)

	if valPtr.Elem().Type() == ctyValueType {
		valPtr.Elem().Set(reflect.ValueOf(val))
		return nil
	}
	if val.IsNull() {
		return nil
	}

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		logger.Debug("Could not imply cty.Type from Go type, attempting direct decoding.", "go_type", valPtr.Elem().Type().String(), "error", err)
		return gocty.FromCtyValue(val, goVal)
	}

	convertedVal, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	if !val.Type().Equals(convertedVal.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", convertedVal.Type().FriendlyName(),
		)
	}
	return gocty.FromCtyValue(convertedVal, goVal)
}

// ToGoValue converts a cty.Value to plain Go data: string, int64 or
// float64, bool, []any, map[string]any, or nil.
func (c *Converter) ToGoValue(val cty.Value) (any, error) {
	return ToGoValue(val)
}

// ToGoValue is the package-level form of Converter.ToGoValue.
func ToGoValue(val cty.Value) (any, error) {
	if val == cty.NilVal || val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	val, _ = val.Unmark()

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			gv, err := ToGoValue(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = gv
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			gv, err := ToGoValue(v)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
	}
}
