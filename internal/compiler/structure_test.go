package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eventgraph/internal/ir"
)

func requireDuplicate(t *testing.T, err error, id string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateOrCyclicEvent)

	var gErr *GraphError
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, CodeDuplicateOrCyclicEvent, gErr.Code)
	assert.Equal(t, id, gErr.EventID)
}

func TestValidateStructure_Tree(t *testing.T) {
	g := Build(ir.Declaration{
		"event-1": {Children: []string{"event-2", "event-3"}},
		"event-2": {Children: []string{"event-4", "event-5"}},
		"event-3": {Children: []string{"event-6"}},
	})

	assert.NoError(t, ValidateStructure("event-1", g))
}

func TestValidateStructure_SingleNode(t *testing.T) {
	g := Build(ir.Declaration{"solo": {}})
	assert.NoError(t, ValidateStructure("solo", g))
}

// Scenario B: event-1 → event-2 → event-3 → event-2.
func TestValidateStructure_Cycle(t *testing.T) {
	g := Build(ir.Declaration{
		"event-1": {Children: []string{"event-2"}},
		"event-2": {Children: []string{"event-3"}},
		"event-3": {Children: []string{"event-2"}},
	})

	requireDuplicate(t, ValidateStructure("event-1", g), "event-2")
}

func TestValidateStructure_SelfLoop(t *testing.T) {
	g := Build(ir.Declaration{
		"a": {Children: []string{"b"}},
		"b": {Children: []string{"b"}},
	})

	requireDuplicate(t, ValidateStructure("a", g), "b")
}

func TestValidateStructure_FanIn(t *testing.T) {
	// Diamond: root → a, b; a → shared; b → shared.
	g := Build(ir.Declaration{
		"root": {Children: []string{"a", "b"}},
		"a":    {Children: []string{"shared"}},
		"b":    {Children: []string{"shared"}},
	})

	requireDuplicate(t, ValidateStructure("root", g), "shared")
}

func TestValidateStructure_FanInAcrossLevels(t *testing.T) {
	g := Build(ir.Declaration{
		"root": {Children: []string{"a", "leaf"}},
		"a":    {Children: []string{"leaf"}},
	})

	requireDuplicate(t, ValidateStructure("root", g), "leaf")
}

func TestValidateStructure_RepeatedChild(t *testing.T) {
	g := Build(ir.Declaration{
		"root": {Children: []string{"x", "x"}},
	})

	requireDuplicate(t, ValidateStructure("root", g), "x")
}

func TestValidateStructure_DetachedCycle(t *testing.T) {
	// a is the only in-degree-zero node, but c ⇄ d hangs off nothing.
	g := Build(ir.Declaration{
		"a": {Children: []string{"b"}},
		"c": {Children: []string{"d"}},
		"d": {Children: []string{"c"}},
	})

	root, err := FindRoot(g)
	require.NoError(t, err)
	require.Equal(t, "a", root)

	err = ValidateStructure(root, g)
	requireDuplicate(t, err, "c")
	assert.Contains(t, err.Error(), "cycle not reachable from root a")
}

func TestValidateStructure_WrongRoot(t *testing.T) {
	g := Build(ir.Declaration{
		"a": {Children: []string{"b"}},
	})

	err := ValidateStructure("b", g)
	requireDuplicate(t, err, "a")
	assert.Contains(t, err.Error(), "not reachable from root b")
}

func TestValidateStructure_UnknownRoot(t *testing.T) {
	g := Build(ir.Declaration{"a": {}})

	err := ValidateStructure("missing", g)
	assert.ErrorIs(t, err, ErrUnknownRoot)
	assert.Equal(t, CodeUnknownRoot, Code(err))
}
