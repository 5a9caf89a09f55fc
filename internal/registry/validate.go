package registry

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/hcl"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var ctyValueType = reflect.TypeOf(cty.Value{})

// ValidateRegistry checks every registered kind: it must have a Build
// function, and its input struct must be a pointer to a struct whose tagged
// fields have types go-cty can decode into.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for k, handler := range r.steps {
		name := k.role + " '" + k.kind + "'"
		if handler == nil || handler.Build == nil {
			errs = append(errs, fmt.Sprintf("%s: no build function", name))
			continue
		}
		if handler.NewInput == nil {
			continue
		}

		input := handler.NewInput()
		inputType := reflect.TypeOf(input)
		if inputType == nil || inputType.Kind() != reflect.Pointer || inputType.Elem().Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("%s: NewInput must return a pointer to a struct, got %T", name, input))
			continue
		}

		fields, err := hcl.InputFields(inputType)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		for _, f := range fields {
			if f.Type == ctyValueType {
				logger.Debug("Input accepts any value, static type checking disabled.", "kind", name, "input", f.Name)
				continue
			}
			if _, err := gocty.ImpliedType(reflect.Zero(f.Type).Interface()); err != nil {
				errs = append(errs, fmt.Sprintf("%s, input '%s': could not imply cty type from Go field type %s: %v", name, f.Name, f.Type, err))
			}
		}
	}

	if len(errs) > 0 {
		slices.Sort(errs)
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
