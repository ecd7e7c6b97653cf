// Package language parses schema declarations written in GraphQL SDL.
package language

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseSchema parses SDL source. name labels positions in errors.
func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseSchemaFiles parses and merges several SDL files in the given order.
func ParseSchemaFiles(paths ...string) (*SchemaDocument, error) {
	sources := make([]*ast.Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "read schema %s", p)
		}
		sources = append(sources, &ast.Source{Name: filepath.Base(p), Input: string(data)})
	}
	doc, err := parser.ParseSchemas(sources...)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// PositionOf formats pos as "name:line:column"; an unknown position is "".
func PositionOf(pos *Position) string {
	if pos == nil || pos.Src == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", pos.Src.Name, pos.Line, pos.Column)
}
