package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eventgraph/internal/compiler"
	"github.com/roach88/eventgraph/internal/ir"
)

func scenarioADeclaration() ir.Declaration {
	return ir.Declaration{
		"event-1": {Children: []string{"event-2", "event-3"}},
	}
}

func TestDecodeDeclarationFormats(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
	}{
		{
			name: "json",
			path: "dependencies.json",
			data: `{"event-1": {"children": ["event-2", "event-3"]}}`,
		},
		{
			name: "json shorthand",
			path: "dependencies.json",
			data: `{"event-1": ["event-2", "event-3"]}`,
		},
		{
			name: "yaml",
			path: "dependencies.yaml",
			data: "event-1:\n  children: [event-2, event-3]\n",
		},
		{
			name: "yml shorthand",
			path: "dependencies.yml",
			data: "event-1:\n  - event-2\n  - event-3\n",
		},
		{
			name: "cue",
			path: "dependencies.cue",
			data: `"event-1": children: ["event-2", "event-3"]`,
		},
		{
			name: "cue shorthand",
			path: "dependencies.cue",
			data: `"event-1": ["event-2", "event-3"]`,
		},
		{
			name: "hcl",
			path: "dependencies.hcl",
			data: "event \"event-1\" {\n  children = [\"event-2\", \"event-3\"]\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl, err := DecodeDeclaration(tt.path, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, scenarioADeclaration(), decl)
		})
	}
}

func TestDecodeDeclarationPreservesChildOrderAndDuplicates(t *testing.T) {
	decl, err := DecodeDeclaration("dependencies.json",
		[]byte(`{"a": {"children": ["c", "b", "c"]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "c"}, decl["a"].Children)
}

func TestDecodeDeclarationLeafEntries(t *testing.T) {
	t.Run("yaml null value", func(t *testing.T) {
		decl, err := DecodeDeclaration("dependencies.yaml", []byte("a:\n  children: [b]\nb:\n"))
		require.NoError(t, err)
		require.Contains(t, decl, "b")
		assert.Empty(t, decl["b"].Children)
	})

	t.Run("hcl block without children", func(t *testing.T) {
		decl, err := DecodeDeclaration("dependencies.hcl",
			[]byte("event \"a\" {\n  children = [\"b\"]\n}\n\nevent \"b\" {}\n"))
		require.NoError(t, err)
		require.Contains(t, decl, "b")
		assert.Empty(t, decl["b"].Children)
	})

	t.Run("empty json object", func(t *testing.T) {
		decl, err := DecodeDeclaration("dependencies.json", []byte(`{}`))
		require.NoError(t, err)
		assert.Empty(t, decl)
	})

	t.Run("empty yaml document", func(t *testing.T) {
		decl, err := DecodeDeclaration("dependencies.yaml", []byte(""))
		require.NoError(t, err)
		assert.Empty(t, decl)
	})
}

func TestDecodeDeclarationDuplicateKeys(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
		line int
	}{
		{
			name: "json",
			path: "dependencies.json",
			data: `{"a": {"children": ["b"]}, "a": {"children": ["c"]}}`,
		},
		{
			name: "yaml",
			path: "dependencies.yaml",
			data: "a:\n  children: [b]\na:\n  children: [c]\n",
			line: 3,
		},
		{
			name: "hcl",
			path: "dependencies.hcl",
			data: "event \"a\" {\n  children = [\"b\"]\n}\nevent \"a\" {\n  children = [\"c\"]\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDeclaration(tt.path, []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, compiler.ErrDuplicateDeclaration))
			assert.Equal(t, compiler.CodeDuplicateDeclaration, compiler.Code(err))

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, compiler.CodeDuplicateDeclaration, loadErr.Code)
			assert.Equal(t, tt.path, loadErr.Path)
			assert.Equal(t, tt.line, loadErr.Line)

			var graphErr *compiler.GraphError
			require.True(t, errors.As(err, &graphErr))
			assert.Equal(t, "a", graphErr.EventID)
		})
	}
}

func TestDecodeDeclarationErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
	}{
		{"json syntax", "dependencies.json", `{"a": `},
		{"json top-level array", "dependencies.json", `["a"]`},
		{"json trailing data", "dependencies.json", `{} {}`},
		{"json unknown field", "dependencies.json", `{"a": {"childs": ["b"]}}`},
		{"json wrong child type", "dependencies.json", `{"a": {"children": [1]}}`},
		{"yaml top-level list", "dependencies.yaml", "- a\n- b\n"},
		{"yaml scalar value", "dependencies.yaml", "a: b\n"},
		{"yaml syntax", "dependencies.yaml", "a: [b\n"},
		{"yaml unknown field", "dependencies.yaml", "a:\n  chilren: [b]\n"},
		{"cue unknown field", "dependencies.cue", `a: {chilren: ["b"]}`},
		{"cue syntax", "dependencies.cue", `a: children: [`},
		{"hcl syntax", "dependencies.hcl", `event "a" {`},
		{"hcl unknown attribute", "dependencies.hcl", "event \"a\" {\n  kids = [\"b\"]\n}\n"},
		{"unsupported extension", "dependencies.toml", `a = 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDeclaration(tt.path, []byte(tt.data))
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, ErrCodeDecodeFailed, loadErr.Code)
			assert.Equal(t, tt.path, loadErr.Path)
		})
	}
}

func TestDecodeDeclarationRejectsMisspelledChildren(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		data     string
		wantLine int
	}{
		{"yaml", "dependencies.yaml", "a:\n  chilren: [b]\n", 2},
		{"cue", "dependencies.cue", "a: {\n\tchilren: [\"b\"]\n}\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl, err := DecodeDeclaration(tt.path, []byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, decl)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, ErrCodeDecodeFailed, loadErr.Code)
			assert.Equal(t, tt.wantLine, loadErr.Line)
			assert.Contains(t, err.Error(), `unknown field "chilren"`)
		})
	}
}

func TestDecodeDefinitionFormats(t *testing.T) {
	want := ir.EventRecord{
		ID:    "event-2",
		Name:  "Send welcome email",
		Start: ir.HandlerRef{Module: "handlers.js", Function: "sendWelcome"},
	}

	tests := []struct {
		name string
		path string
		data string
	}{
		{
			name: "json",
			path: "event-2/definition.json",
			data: `{"name": "Send welcome email", "id": "event-2", "start": {"module": "handlers.js", "function": "sendWelcome"}}`,
		},
		{
			name: "yaml",
			path: "event-2/definition.yaml",
			data: "name: Send welcome email\nid: event-2\nstart:\n  module: handlers.js\n  function: sendWelcome\n",
		},
		{
			name: "cue",
			path: "event-2/definition.cue",
			data: "name: \"Send welcome email\"\nid: \"event-2\"\nstart: {\n\tmodule: \"handlers.js\"\n\tfunction: \"sendWelcome\"\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeDefinition(tt.path, []byte(tt.data))
			require.NoError(t, err)

			assert.Equal(t, tt.path, rec.Source)
			rec.Source = ""
			assert.Equal(t, want, rec)
		})
	}
}

func TestDecodeDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
	}{
		{"json unknown field", "definition.json", `{"id": "a", "handler": "x"}`},
		{"json syntax", "definition.json", `{"id": `},
		{"json trailing data", "definition.json", `{"id": "a"} garbage`},
		{"json second object", "definition.json", `{"id": "a"} {"id": "b"}`},
		{"yaml unknown field", "definition.yaml", "id: a\nhandler: x\n"},
		{"yaml second document", "definition.yaml", "id: a\n---\nid: b\n"},
		{"cue type mismatch", "definition.cue", "id: 1\n"},
		{"cue unknown field", "definition.cue", "id: \"a\"\nbogus: 1\n"},
		{"cue unknown start field", "definition.cue", "id: \"a\"\nstart: {module: \"m.js\", fn: \"a\"}\n"},
		{"hcl is not a definition format", "definition.hcl", `id = "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDefinition(tt.path, []byte(tt.data))
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, ErrCodeDecodeFailed, loadErr.Code)
		})
	}
}

func TestLoadErrorFormat(t *testing.T) {
	err := &LoadError{Code: ErrCodeDecodeFailed, Path: "deps.yaml", Line: 3, Message: "event \"a\"", Err: errors.New("boom")}
	assert.Equal(t, "deps.yaml:3: E004: event \"a\": boom", err.Error())

	err = &LoadError{Code: ErrCodeNoDependencies, Message: "nothing here"}
	assert.Equal(t, "E003: nothing here", err.Error())

	inner := errors.New("inner")
	err = &LoadError{Code: ErrCodeGeneric, Path: "x", Err: inner}
	assert.Equal(t, "x: E001: inner", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestErrorCode(t *testing.T) {
	_, dupErr := DecodeDeclaration("dependencies.json", []byte(`{"a": [], "a": []}`))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"load error", &LoadError{Code: ErrCodeNotFound}, ErrCodeNotFound},
		{"duplicate declaration", dupErr, compiler.CodeDuplicateDeclaration},
		{"graph error", compiler.DuplicateDeclarationError("a", ""), compiler.CodeDuplicateDeclaration},
		{"validation error", compiler.ValidationError{Code: compiler.ErrRecordNameEmpty}, compiler.ErrRecordNameEmpty},
		{"plain error", errors.New("boom"), ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestLoadErrorParts(t *testing.T) {
	err := &LoadError{Code: ErrCodeDecodeFailed, Path: "a/definition.yaml", Line: 2, Message: "decoding failed", Err: errors.New("bad")}
	assert.Equal(t, "a/definition.yaml:2", err.Location())
	assert.Equal(t, "decoding failed: bad", err.Detail())

	err = &LoadError{Code: ErrCodeNotFound, Path: "events", Message: "not a directory"}
	assert.Equal(t, "events", err.Location())
	assert.Equal(t, "not a directory", err.Detail())
}
