// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyparse

import (
	"context"
	"testing"

	"github.com/petar-djukic/codedigest/internal/digest"
	"github.com/petar-djukic/codedigest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mixedSource = `import os
from a import b
X = 1
Y: int = 2
a = b = 3
p, q = 1, 2
obj.attr = 4

@dec
def f():
    pass

async def g():
    await f()

class C:
    Z = 5

    def m(self):
        return self.Z
`

func TestParse_TopLevelShape(t *testing.T) {
	root, err := Parse(context.Background(), []byte(mixedSource))
	require.NoError(t, err)
	require.Equal(t, digest.NodeModule, root.Kind)

	type row struct {
		kind   digest.NodeKind
		name   string
		simple bool
		start  int
	}
	var got []row
	for _, c := range root.Children {
		got = append(got, row{c.Kind, c.Name, c.SimpleTarget, c.StartLine})
	}
	assert.Equal(t, []row{
		{digest.NodeImport, "", false, 1},
		{digest.NodeImport, "", false, 2},
		{digest.NodeAssignment, "X", true, 3},
		{digest.NodeAssignment, "Y", true, 4},
		{digest.NodeAssignment, "", false, 5},
		{digest.NodeAssignment, "", false, 6},
		{digest.NodeAssignment, "", false, 7},
		{digest.NodeFunctionDef, "f", false, 10},
		{digest.NodeFunctionDef, "g", false, 13},
		{digest.NodeClassDef, "C", false, 16},
	}, got)

	class := root.Children[9]
	assert.Equal(t, 20, class.EndLine)
	require.Len(t, class.Children, 2)
	assert.Equal(t, "Z", class.Children[0].Name)
	assert.Equal(t, "m", class.Children[1].Name)
}

func TestBuildModule_Registration(t *testing.T) {
	m, err := BuildModule(context.Background(), []byte(mixedSource))
	require.NoError(t, err)

	assert.Equal(t, []string{"f", "g"}, m.Functions())
	assert.Equal(t, []string{"C"}, m.Classes())
	assert.Equal(t, []string{"X", "Y"}, m.Constants())
	assert.Len(t, m.Imports(), 2)

	methods, ok := m.Methods("C")
	require.True(t, ok)
	assert.Equal(t, []string{"m"}, methods)

	sig, ok := m.GetFunction("g", types.Signature, types.NumbersDisabled)
	require.True(t, ok)
	assert.Equal(t, "async def g():\n", sig)

	f, _ := m.Function("f")
	assert.Equal(t, digest.Span{Lo: 9, Hi: 10}, f.Full, "decorators are not part of the declaration")
}

func TestBuildModule_ScenarioA(t *testing.T) {
	m, err := BuildModule(context.Background(), []byte("def f():\n    return 1\n"))
	require.NoError(t, err)

	sig, ok := m.GetFunction("f", types.Signature, types.NumbersEnabled)
	require.True(t, ok)
	assert.Equal(t, "1 |def f():\n", sig)

	full, _ := m.GetFunction("f", types.Full, types.NumbersEnabled)
	assert.Equal(t, "1 |def f():\n2 |    return 1\n", full)
}

func TestBuildModule_ScenarioC(t *testing.T) {
	content := "import os\n# note\nLIMIT = 5\n\nprint(LIMIT)\n"
	m, err := BuildModule(context.Background(), []byte(content))
	require.NoError(t, err)

	limit, ok := m.Constant("LIMIT")
	require.True(t, ok)
	assert.Equal(t, "# note", m.Source().Text(limit.Upper))
	assert.Equal(t, digest.NoSpan, limit.Lower)
}

func TestBuildModule_InvalidSyntax(t *testing.T) {
	for _, content := range []string{
		"def f(:\n    pass\n",
		"class\n",
		"x = (1,\n",
	} {
		m, err := BuildModule(context.Background(), []byte(content))
		assert.ErrorIs(t, err, digest.ErrParseFailure, "content %q", content)
		assert.Nil(t, m)
	}
}

func TestAnalyze_InvalidUTF8(t *testing.T) {
	_, err := Analyze(context.Background(), []byte{'x', ' ', '=', ' ', 0xff, '\n'})
	assert.ErrorIs(t, err, digest.ErrParseFailure)
}

func TestBuildModule_RoundTrip(t *testing.T) {
	for _, content := range []string{
		mixedSource,
		"",
		"x = 1",
		"\"\"\"Doc.\"\"\"\n\n\ndef f():\n    pass\n\n\n",
	} {
		m, err := BuildModule(context.Background(), []byte(content))
		require.NoError(t, err, "content %q", content)
		assert.Equal(t, content, m.Render(types.Full, types.NumbersDisabled))
	}
}

func TestBuildModule_ClassSignatureOmitsBodies(t *testing.T) {
	m, err := BuildModule(context.Background(), []byte(mixedSource))
	require.NoError(t, err)

	sig, ok := m.GetClass("C", types.Signature, types.NumbersDisabled)
	require.True(t, ok)
	assert.Equal(t, "class C:\n    Z = 5\n\n    def m(self):\n", sig)
	assert.NotContains(t, sig, "return")
}

func TestBuildModule_TrailingCommentBelongsToNext(t *testing.T) {
	content := "def f():\n    return 1\n# about g\ndef g():\n    return 2\n"
	m, err := BuildModule(context.Background(), []byte(content))
	require.NoError(t, err)

	f, _ := m.Function("f")
	assert.Equal(t, digest.Span{Lo: 0, Hi: 1}, f.Full)

	g, _ := m.Function("g")
	assert.Equal(t, digest.Span{Lo: 2, Hi: 2}, g.Upper)
}

func TestBuildModule_ModuleDoc(t *testing.T) {
	m, err := BuildModule(context.Background(), []byte("\"\"\"Tools.\n\nMore.\n\"\"\"\nimport os\n"))
	require.NoError(t, err)

	assert.Equal(t, digest.Span{Lo: 0, Hi: 3}, m.Doc())
	assert.Equal(t, "\"\"\"Tools.\n\nMore.\n\"\"\"\n", m.Render(types.Minimal, types.NumbersDisabled))
}

func TestBuildModule_ConditionalDefinitionsSkipped(t *testing.T) {
	content := "if True:\n    def hidden():\n        pass\n\ntry:\n    import fast\nexcept ImportError:\n    fast = None\n"
	m, err := BuildModule(context.Background(), []byte(content))
	require.NoError(t, err)

	assert.Empty(t, m.Functions())
	assert.Empty(t, m.Constants())
	assert.Empty(t, m.Imports())
}

func TestBuildModule_ExcludeMarkers(t *testing.T) {
	content := "# XXX temporary\nLIMIT = 1\n"

	m, err := BuildModule(context.Background(), []byte(content))
	require.NoError(t, err)
	limit, _ := m.Constant("LIMIT")
	assert.True(t, limit.Upper.Valid())

	m, err = BuildModule(context.Background(), []byte(content), digest.WithExcludeMarkers([]string{"XXX"}))
	require.NoError(t, err)
	limit, _ = m.Constant("LIMIT")
	assert.False(t, limit.Upper.Valid())
}

func TestAnalyze_Identifiers(t *testing.T) {
	r, err := Analyze(context.Background(), []byte("import os\nos.path.join(x)\n"))
	require.NoError(t, err)

	assert.Contains(t, r.Refs, Identifier{Name: "os", Line: 1})
	assert.Contains(t, r.Refs, Identifier{Name: "os", Line: 2})
	assert.Contains(t, r.Refs, Identifier{Name: "x", Line: 2})

	seen := make(map[Identifier]int)
	for _, id := range r.Refs {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "duplicate %v", id)
	}
}
