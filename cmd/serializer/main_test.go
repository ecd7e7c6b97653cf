package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const accountSDL = `
"""A customer account."""
type Account {
  id: Int!
  "Display name."
  name: String @field(source: "profile.name")
  joined: Date @field(format: "%d/%m/%Y")
  balance: Decimal
}

type Tag {
  label: String!
}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestSerialize(t *testing.T) {
	sdl := writeFile(t, "account.graphql", accountSDL)
	in := `{"joined": "02/01/2014", "id": 7, "profile": {"name": "Ada"}, "balance": 1.50}`

	out, _, err := runCLI(t, in, "serialize", "--schema", sdl, "--type", "Account")
	require.NoError(t, err)
	require.Equal(t, `{"id":7,"name":"Ada","joined":"02/01/2014","balance":1.50}`+"\n", out)
}

func TestSerialize_ManyFromFile(t *testing.T) {
	sdl := writeFile(t, "account.graphql", accountSDL)
	input := writeFile(t, "tags.json", `[{"label": "b"}, {"label": "a"}]`)

	out, _, err := runCLI(t, "", "serialize", "--schema", sdl, "--type", "Tag", "--many", input)
	require.NoError(t, err)
	require.Equal(t, `[{"label":"b"},{"label":"a"}]`+"\n", out)

	_, _, err = runCLI(t, `{"label": "a"}`, "serialize", "--schema", sdl, "--type", "Tag", "--many")
	require.Error(t, err)
}

func TestSerialize_Pretty(t *testing.T) {
	sdl := writeFile(t, "account.graphql", accountSDL)
	out, _, err := runCLI(t, `{"label": "x"}`, "serialize", "--schema", sdl, "--type", "Tag", "--pretty")
	require.NoError(t, err)
	require.Equal(t, "{\n  \"label\": \"x\"\n}\n", out)
}

func TestSerialize_MissingAttribute(t *testing.T) {
	sdl := writeFile(t, "account.graphql", accountSDL)
	_, _, err := runCLI(t, `{}`, "serialize", "--schema", sdl, "--type", "Tag")
	require.Error(t, err)
	require.Contains(t, err.Error(), `field "label"`)
}

func TestDeserialize(t *testing.T) {
	sdl := writeFile(t, "account.graphql", accountSDL)
	in := `{"id": 7, "name": "Ada", "joined": "02/01/2014", "balance": ""}`

	out, stderr, err := runCLI(t, in, "--log.level", "debug", "deserialize", "--schema", sdl, "--type", "Account")
	require.NoError(t, err)
	require.Equal(t, `{"id":7,"name":"Ada","joined":"2014-01-02","balance":null}`+"\n", out)
	require.Contains(t, stderr, "level=debug")
	require.Contains(t, stderr, `msg="conversion finished" schema=Account direction=deserialize`)
}

func TestDeserialize_ValidationErrors(t *testing.T) {
	sdl := writeFile(t, "account.graphql", accountSDL)
	out, stderr, err := runCLI(t, `{"id": "seven", "balance": "x"}`, "deserialize", "--schema", sdl, "--type", "Account")
	require.Error(t, err)
	require.Contains(t, out, `{"errors":{"id":[`)
	require.Contains(t, out, `"balance":["A valid decimal is required."]`)
	require.Contains(t, stderr, "conversion failed")
}

func TestDescribe(t *testing.T) {
	sdl := writeFile(t, "account.graphql", accountSDL)
	out, _, err := runCLI(t, "", "describe", "--schema", sdl, "--type", "Account")
	require.NoError(t, err)

	var docs []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	require.Equal(t, "Account", docs[0]["name"])
	require.Equal(t, "A customer account.", docs[0]["description"])

	fs := docs[0]["fields"].([]any)
	require.Len(t, fs, 4)
	name := fs[1].(map[string]any)
	require.Equal(t, "name", name["name"])
	require.Equal(t, "CharField", name["type_name"])
	require.Equal(t, "string", name["type"])
	require.Equal(t, false, name["required"])
	require.Equal(t, "Display name.", name["help_text"])
	require.Equal(t, "profile.name", name["source"])
	joined := fs[2].(map[string]any)
	require.Equal(t, "%d/%m/%Y", joined["format"])

	out, _, err = runCLI(t, "", "describe", "--schema", sdl, "-o", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"name": "Tag"`)
	require.Contains(t, out, `"type_name": "DecimalField"`)
}

func TestRender(t *testing.T) {
	sdl := writeFile(t, "account.graphql", accountSDL)
	out, _, err := runCLI(t, "", "render", "--schema", sdl, "--type", "Tag")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "directive @field("))
	require.Contains(t, out, "type Tag {\n  label: String!\n}\n")
	require.NotContains(t, out, "type Account")
}

func TestConfig(t *testing.T) {
	sdl := writeFile(t, "account.graphql", `type D { day: Date! }`)
	cfg := writeFile(t, "constants.yaml", "date_format: \"%Y/%m/%d\"\n")
	out, _, err := runCLI(t, `{"day": "2014/01/02"}`, "--config", cfg, "serialize", "--schema", sdl, "--type", "D")
	require.NoError(t, err)
	require.Equal(t, `{"day":"2014/01/02"}`+"\n", out)
}

func TestMetricsTextfile(t *testing.T) {
	sdl := writeFile(t, "account.graphql", accountSDL)
	prom := filepath.Join(t.TempDir(), "serializer.prom")

	_, _, err := runCLI(t, `[{"label": "a"}, {"label": "b"}]`, "--metrics.textfile", prom, "serialize", "--schema", sdl, "--type", "Tag")
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	require.Contains(t, string(data), `serializer_conversions_total{direction="serialize",outcome="success",schema="Tag"} 1`)
}

func TestRun_Errors(t *testing.T) {
	sdl := writeFile(t, "account.graphql", accountSDL)

	_, _, err := runCLI(t, "", "serialize", "--schema", sdl)
	require.Error(t, err)

	_, _, err = runCLI(t, "{}", "serialize", "--schema", sdl, "--type", "Nope")
	require.Error(t, err)

	_, _, err = runCLI(t, "{", "serialize", "--schema", sdl, "--type", "Tag")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode input")

	_, _, err = runCLI(t, "", "--log.level", "loud", "render", "--schema", sdl)
	require.Error(t, err)
}
