package main

import (
	"bytes"
	stdjson "encoding/json"
	"io"
	"os"

	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hanpama/serializer/internal/fields"
	"github.com/hanpama/serializer/internal/language"
	"github.com/hanpama/serializer/internal/ordered"
	"github.com/hanpama/serializer/internal/schema"
	"github.com/hanpama/serializer/internal/sdl"
	"github.com/hanpama/serializer/internal/serializer"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type typeOptions struct {
	Schema []string `required:"" placeholder:"FILE" help:"SDL file declaring the schema types. Repeatable."`
	Type   string   `required:"" help:"Object type to use."`
}

type serializeCmd struct {
	Types  typeOptions `embed:""`
	Many   bool        `help:"Fail unless the input is a JSON array."`
	Pretty bool        `help:"Indent the output."`
	Input  string      `arg:"" optional:"" default:"-" help:"JSON input file, or - for stdin."`
}

func (c *serializeCmd) Run(g *globals) error {
	sch, err := g.schema(c.Types.Schema, c.Types.Type)
	if err != nil {
		return err
	}
	in, err := g.input(c.Input)
	if err != nil {
		return err
	}

	var ser *serializer.Serializer
	if c.Many {
		if ser, err = serializer.NewSlice(sch, in); err != nil {
			return errors.Wrap(err, "--many")
		}
	} else {
		ser = serializer.New(sch, in)
	}
	out, err := ser.DataContext(g.ctx)
	if err != nil {
		return err
	}
	return writeJSON(g.stdout, out, c.Pretty)
}

type deserializeCmd struct {
	Types  typeOptions `embed:""`
	Pretty bool        `help:"Indent the output."`
	Input  string      `arg:"" optional:"" default:"-" help:"JSON input file, or - for stdin."`
}

func (c *deserializeCmd) Run(g *globals) error {
	sch, err := g.schema(c.Types.Schema, c.Types.Type)
	if err != nil {
		return err
	}
	in, err := g.input(c.Input)
	if err != nil {
		return err
	}

	res, err := serializer.Deserialize(g.ctx, sch, in)
	var verr *serializer.ValidationError
	if errors.As(err, &verr) {
		report := ordered.New(len(verr.Fields))
		for _, f := range verr.Fields {
			report.Set(f.Field, f.Messages)
		}
		out := ordered.New(1)
		out.Set("errors", report)
		if werr := writeJSON(g.stdout, out, c.Pretty); werr != nil {
			return werr
		}
		return err
	}
	if err != nil {
		return err
	}
	return writeJSON(g.stdout, res.Values, c.Pretty)
}

type describeCmd struct {
	Schema []string `required:"" placeholder:"FILE" help:"SDL file declaring the schema types. Repeatable."`
	Type   []string `help:"Object types to describe. All object types when omitted."`
	Output string   `short:"o" default:"yaml" enum:"yaml,json" help:"Output format (${enum})."`
}

type schemaDoc struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []fieldDoc `json:"fields" yaml:"fields"`
}

type fieldDoc struct {
	Name            string `json:"name" yaml:"name"`
	fields.Metadata `yaml:",inline"`
	Source          string `json:"source,omitempty" yaml:"source,omitempty"`
	Format          string `json:"format,omitempty" yaml:"format,omitempty"`
}

func (c *describeCmd) Run(g *globals) error {
	schemas, err := g.schemas(c.Schema, c.Type)
	if err != nil {
		return err
	}
	docs := make([]schemaDoc, len(schemas))
	for i, s := range schemas {
		docs[i] = describe(s)
	}

	if c.Output == "json" {
		return writeJSON(g.stdout, docs, true)
	}
	enc := yaml.NewEncoder(g.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	return enc.Close()
}

func describe(s *schema.Schema) schemaDoc {
	doc := schemaDoc{Name: s.Name, Description: s.Description}
	for _, bf := range s.Fields() {
		fd := fieldDoc{Name: bf.Name, Metadata: bf.Field.Metadata(), Source: bf.Field.Source()}
		if k := bf.Field.Kind(); k == fields.KindDate || k == fields.KindDateTime {
			fd.Format = bf.Field.Format()
		}
		doc.Fields = append(doc.Fields, fd)
	}
	return doc
}

type renderCmd struct {
	Schema []string `required:"" placeholder:"FILE" help:"SDL file declaring the schema types. Repeatable."`
	Type   []string `help:"Object types to render. All object types when omitted."`
}

func (c *renderCmd) Run(g *globals) error {
	schemas, err := g.schemas(c.Schema, c.Type)
	if err != nil {
		return err
	}
	_, err = io.WriteString(g.stdout, schema.Render(schemas...))
	return err
}

func (g *globals) schema(files []string, typeName string) (*schema.Schema, error) {
	doc, err := language.ParseSchemaFiles(files...)
	if err != nil {
		return nil, err
	}
	s, err := sdl.FromDocument(doc, typeName, fields.WithConstants(g.consts))
	if err != nil {
		return nil, err
	}
	level.Debug(g.logger).Log("msg", "schema loaded", "type", s.Name, "fields", s.Len())
	return s, nil
}

func (g *globals) schemas(files, types []string) ([]*schema.Schema, error) {
	doc, err := language.ParseSchemaFiles(files...)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return sdl.Objects(doc, fields.WithConstants(g.consts))
	}
	out := make([]*schema.Schema, 0, len(types))
	for _, t := range types {
		s, err := sdl.FromDocument(doc, t, fields.WithConstants(g.consts))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// input decodes a JSON document from path, or from stdin when path is "-".
func (g *globals) input(path string) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(g.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	v, err := ordered.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode input")
	}
	return v, nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	if pretty {
		var buf bytes.Buffer
		if err := stdjson.Indent(&buf, data, "", "  "); err != nil {
			return errors.Wrap(err, "indent output")
		}
		data = buf.Bytes()
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
