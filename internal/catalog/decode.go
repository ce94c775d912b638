package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"github.com/roach88/eventgraph/internal/compiler"
	"github.com/roach88/eventgraph/internal/ir"
)

// Supported file extensions.
var (
	DefinitionExtensions   = []string{".json", ".yaml", ".yml", ".cue"}
	DependenciesExtensions = []string{".json", ".yaml", ".yml", ".cue", ".hcl"}
)

// DecodeDefinition decodes one event definition file. The format is chosen
// from the file extension. Unknown fields and trailing data are rejected.
func DecodeDefinition(path string, data []byte) (ir.EventRecord, error) {
	var rec ir.EventRecord

	switch ext(path) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rec); err != nil {
			return rec, decodeError(path, err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return rec, decodeError(path, fmt.Errorf("unexpected data after definition object"))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&rec); err != nil {
			if !errors.Is(err, io.EOF) {
				return rec, decodeError(path, err)
			}
		} else {
			var extra yaml.Node
			if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
				return rec, decodeError(path, fmt.Errorf("unexpected document after definition"))
			}
		}
	case ".cue":
		v, err := compileCUE(path, data)
		if err != nil {
			return rec, err
		}
		if err := checkCUEFields(path, v, definitionFields...); err != nil {
			return rec, err
		}
		if start := v.LookupPath(cue.ParsePath("start")); start.Exists() && start.IncompleteKind() == cue.StructKind {
			if err := checkCUEFields(path, start, handlerFields...); err != nil {
				return rec, err
			}
		}
		if err := v.Decode(&rec); err != nil {
			return rec, cueError(path, err)
		}
	default:
		return rec, &LoadError{Code: ErrCodeDecodeFailed, Path: path,
			Message: fmt.Sprintf("unsupported definition format %q", ext(path))}
	}

	rec.Source = path
	return rec, nil
}

// DecodeDeclaration decodes a dependencies file. The format is chosen from
// the file extension.
func DecodeDeclaration(path string, data []byte) (ir.Declaration, error) {
	switch ext(path) {
	case ".json":
		return decodeDeclarationJSON(path, data)
	case ".yaml", ".yml":
		return decodeDeclarationYAML(path, data)
	case ".cue":
		return decodeDeclarationCUE(path, data)
	case ".hcl":
		return decodeDeclarationHCL(path, data)
	default:
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Path: path,
			Message: fmt.Sprintf("unsupported dependencies format %q", ext(path))}
	}
}

// decodeDeclarationJSON walks the top-level object token by token so that a
// key declared twice is caught instead of silently overwritten.
func decodeDeclarationJSON(path string, data []byte) (ir.Declaration, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, decodeError(path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, decodeError(path, fmt.Errorf("top-level value must be an object"))
	}

	decl := ir.Declaration{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, decodeError(path, err)
		}
		key := tok.(string)
		offset := dec.InputOffset()

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, decodeError(path, fmt.Errorf("event %q: %w", key, err))
		}
		if _, dup := decl[key]; dup {
			return nil, &LoadError{
				Code:    compiler.CodeDuplicateDeclaration,
				Path:    path,
				Message: "duplicate declaration",
				Err:     compiler.DuplicateDeclarationError(key, fmt.Sprintf("byte offset %d", offset)),
			}
		}

		spec, err := decodeSpecJSON(raw)
		if err != nil {
			return nil, decodeError(path, fmt.Errorf("event %q: %w", key, err))
		}
		decl[key] = spec
	}

	if _, err := dec.Token(); err != nil {
		return nil, decodeError(path, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, decodeError(path, fmt.Errorf("unexpected data after top-level object"))
	}
	return decl, nil
}

// decodeSpecJSON accepts {"children": [...]} or the bare list shorthand.
func decodeSpecJSON(raw json.RawMessage) (ir.DependencySpec, error) {
	var spec ir.DependencySpec
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err := json.Unmarshal(trimmed, &spec.Children)
		return spec, err
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	err := dec.Decode(&spec)
	return spec, err
}

func decodeDeclarationYAML(path string, data []byte) (ir.Declaration, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, decodeError(path, err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return ir.Declaration{}, nil
	}
	return DeclarationFromYAML(path, doc.Content[0])
}

// DeclarationFromYAML decodes an already parsed YAML mapping. Line numbers
// in errors refer to the document the node came from.
func DeclarationFromYAML(path string, root *yaml.Node) (ir.Declaration, error) {
	decl := ir.Declaration{}
	if root == nil || root.Kind == 0 {
		return decl, nil
	}
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return decl, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Path: path, Line: root.Line,
			Message: "top-level value must be a mapping"}
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		key := keyNode.Value

		if _, dup := decl[key]; dup {
			return nil, &LoadError{
				Code:    compiler.CodeDuplicateDeclaration,
				Path:    path,
				Line:    keyNode.Line,
				Message: "duplicate declaration",
				Err:     compiler.DuplicateDeclarationError(key, fmt.Sprintf("line %d", keyNode.Line)),
			}
		}

		var spec ir.DependencySpec
		var err error
		switch valNode.Kind {
		case yaml.SequenceNode:
			err = valNode.Decode(&spec.Children)
		case yaml.MappingNode:
			if err = checkYAMLFields(valNode, specFields...); err == nil {
				err = valNode.Decode(&spec)
			}
		case yaml.ScalarNode:
			// "event-1:" with no value declares an event without children.
			if valNode.Tag != "!!null" {
				err = fmt.Errorf("expected mapping or list, got %q", valNode.Value)
			}
		default:
			err = fmt.Errorf("expected mapping or list")
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeDecodeFailed, Path: path, Line: valNode.Line,
				Message: fmt.Sprintf("event %q", key), Err: err}
		}
		decl[key] = spec
	}

	return decl, nil
}

func decodeDeclarationCUE(path string, data []byte) (ir.Declaration, error) {
	v, err := compileCUE(path, data)
	if err != nil {
		return nil, err
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, cueError(path, err)
	}

	decl := ir.Declaration{}
	for iter.Next() {
		key := iter.Selector().Unquoted()
		val := iter.Value()

		var spec ir.DependencySpec
		if val.IncompleteKind() == cue.ListKind {
			err = val.Decode(&spec.Children)
		} else {
			if err := checkCUEFields(path, val, specFields...); err != nil {
				return nil, err
			}
			err = val.Decode(&spec)
		}
		if err != nil {
			return nil, cueError(path, err)
		}
		decl[key] = spec
	}

	return decl, nil
}

// hclDependencies is the HCL shape of a dependencies file.
type hclDependencies struct {
	Events []hclEvent `hcl:"event,block"`
}

type hclEvent struct {
	ID       string   `hcl:"id,label"`
	Children []string `hcl:"children,optional"`
}

func decodeDeclarationHCL(path string, data []byte) (ir.Declaration, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, decodeError(path, diags)
	}

	var body hclDependencies
	if diags := gohcl.DecodeBody(file.Body, nil, &body); diags.HasErrors() {
		return nil, decodeError(path, diags)
	}

	decl := ir.Declaration{}
	for i, ev := range body.Events {
		if _, dup := decl[ev.ID]; dup {
			return nil, &LoadError{
				Code:    compiler.CodeDuplicateDeclaration,
				Path:    path,
				Message: "duplicate declaration",
				Err:     compiler.DuplicateDeclarationError(ev.ID, fmt.Sprintf("block %d", i)),
			}
		}
		decl[ev.ID] = ir.DependencySpec{Children: ev.Children}
	}

	return decl, nil
}

// Field names accepted in each object; anything else is a decode error.
var (
	definitionFields = []string{"id", "name", "start"}
	handlerFields    = []string{"module", "function"}
	specFields       = []string{"children"}
)

// checkYAMLFields rejects keys of the mapping n that are not in allowed.
func checkYAMLFields(n *yaml.Node, allowed ...string) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if key := n.Content[i]; !slices.Contains(allowed, key.Value) {
			return fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
		}
	}
	return nil
}

// checkCUEFields rejects regular fields of the struct v that are not in
// allowed. CUE decoding into a Go struct would otherwise drop them.
func checkCUEFields(path string, v cue.Value, allowed ...string) error {
	iter, err := v.Fields()
	if err != nil {
		return cueError(path, err)
	}
	for iter.Next() {
		label := iter.Selector().Unquoted()
		if slices.Contains(allowed, label) {
			continue
		}
		loadErr := decodeError(path, fmt.Errorf("unknown field %q", label))
		if pos := iter.Value().Pos(); pos.IsValid() {
			loadErr.Line = pos.Line()
		}
		return loadErr
	}
	return nil
}

func compileCUE(path string, data []byte) (cue.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return v, cueError(path, err)
	}
	return v, nil
}

// cueError converts a CUE error to a LoadError carrying the first position.
func cueError(path string, err error) *LoadError {
	loadErr := decodeError(path, err)
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return loadErr
	}
	if positions := cueerrors.Positions(errs[0]); len(positions) > 0 && positions[0].IsValid() {
		loadErr.Line = positions[0].Line()
	}
	return loadErr
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
