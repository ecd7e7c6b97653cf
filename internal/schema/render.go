package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hanpama/serializer/internal/fields"
)

// FieldDirective declares the @field directive understood by schema
// declarations.
const FieldDirective = `directive @field(source: String, label: String, format: String, required: Boolean, empty: String) on FIELD_DEFINITION`

// Render produces SDL for the given schemas: the @field directive, every
// non-builtin scalar in use (sorted by name), then one object type per schema
// with fields in declaration order.
func Render(schemas ...*Schema) string {
	var b strings.Builder
	b.WriteString(FieldDirective)
	b.WriteString("\n\n")

	used := map[string]Scalar{}
	for _, s := range schemas {
		for _, f := range s.fields {
			sc := ScalarFor(f.Field.Kind())
			if !sc.Builtin {
				used[sc.Name] = sc
			}
		}
	}
	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		renderDescription(&b, used[name].Description, "")
		b.WriteString("scalar ")
		b.WriteString(name)
		b.WriteString("\n\n")
	}

	for _, s := range schemas {
		renderObject(&b, s)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderDescription(b *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	b.WriteString(indent)
	b.WriteString("\"\"\"\n")
	b.WriteString(indent)
	b.WriteString(strings.ReplaceAll(desc, `"""`, `\"""`))
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString("\"\"\"\n")
}

func renderObject(b *strings.Builder, s *Schema) {
	renderDescription(b, s.Description, "")
	b.WriteString("type ")
	b.WriteString(s.Name)
	b.WriteString(" {\n")
	for _, f := range s.fields {
		renderField(b, f)
	}
	b.WriteString("}\n\n")
}

func renderField(b *strings.Builder, bf *BoundField) {
	f := bf.Field
	renderDescription(b, f.HelpText(), "  ")
	b.WriteString("  ")
	b.WriteString(bf.Name)
	b.WriteString(": ")
	b.WriteString(ScalarFor(f.Kind()).Name)
	if f.Required() {
		b.WriteString("!")
	}

	var args []string
	if f.Source() != "" {
		args = append(args, "source: "+renderValue(f.Source()))
	}
	if f.Label() != "" {
		args = append(args, "label: "+renderValue(f.Label()))
	}
	if k := f.Kind(); k == fields.KindDate || k == fields.KindDateTime {
		args = append(args, "format: "+renderValue(f.Format()))
	}
	if empty, ok := f.Empty().(string); ok && empty != "" {
		args = append(args, "empty: "+renderValue(empty))
	}
	if len(args) > 0 {
		b.WriteString(" @field(")
		b.WriteString(strings.Join(args, ", "))
		b.WriteString(")")
	}
	b.WriteString("\n")
}

func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
