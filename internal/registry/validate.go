package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate performs a strict check that every registered input struct can be
// decoded from HCL: it must be a pointer to a struct, every exported field must
// carry an `hcl` tag, and every attribute field must have a cty-implied type.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, moduleType := range r.Types() {
		m := r.modules[moduleType]
		if m.New == nil {
			errs = append(errs, fmt.Sprintf("module '%s': no constructor registered", moduleType))
			continue
		}
		if m.NewInput == nil {
			continue
		}

		input := m.NewInput()
		rv := reflect.ValueOf(input)
		if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("module '%s': input must be a pointer to a struct, got %T", moduleType, input))
			continue
		}

		inputType := rv.Elem().Type()
		for i := 0; i < inputType.NumField(); i++ {
			field := inputType.Field(i)
			if !field.IsExported() {
				continue
			}
			tag := field.Tag.Get("hcl")
			if tag == "" {
				errs = append(errs, fmt.Sprintf("module '%s': field '%s' has no hcl tag", moduleType, field.Name))
				continue
			}
			parts := strings.Split(tag, ",")
			if len(parts) > 1 && parts[1] != "optional" && parts[1] != "attr" {
				// Blocks, labels and remain bodies are decoded structurally.
				continue
			}

			if field.Type.Kind() == reflect.Interface {
				logger.Warn("Module input accepts any type, which disables static type checking.", "module", moduleType, "input", parts[0])
				continue
			}

			impliedType, err := gocty.ImpliedType(reflect.Zero(field.Type).Interface())
			if err != nil {
				errs = append(errs, fmt.Sprintf("module '%s', input '%s': could not imply cty type from Go field type %s: %v", moduleType, parts[0], field.Type, err))
				continue
			}
			if impliedType.Equals(cty.DynamicPseudoType) {
				logger.Warn("Module input accepts any type, which disables static type checking.", "module", moduleType, "input", parts[0])
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
