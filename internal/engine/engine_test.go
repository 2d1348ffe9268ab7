// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/codedigest/internal/repomap"
	"github.com/petar-djukic/codedigest/pkg/types"
)

const shapesSource = `"""Shapes."""
import math


def area(r):
    return math.pi * r * r


def perimeter(r):
    return 2 * math.pi * r


class Circle:
    """A circle."""

    UNIT = "cm"

    def __init__(self, r):
        self.r = r

    def area(self):
        return area(self.r)
`

// setupPythonRepo writes files into a temp directory and returns its path.
func setupPythonRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func newTestRunner(t *testing.T, files map[string]string) *Runner {
	t.Helper()
	return NewRunner(Deps{WorkDir: setupPythonRepo(t, files)})
}

func TestRunner_RenderFile(t *testing.T) {
	r := newTestRunner(t, map[string]string{"shapes.py": shapesSource})
	ctx := context.Background()

	full, err := r.RenderFile(ctx, "shapes.py", types.Full, types.NumbersDisabled)
	require.NoError(t, err)
	assert.Equal(t, shapesSource, full)

	sig, err := r.RenderFile(ctx, "shapes.py", types.Signature, types.NumbersDisabled)
	require.NoError(t, err)
	assert.Contains(t, sig, "def area(r):")
	assert.Contains(t, sig, "class Circle:")
	assert.NotContains(t, sig, "math.pi")
}

func TestRunner_RenderFile_RawFallback(t *testing.T) {
	broken := "def broken(:\n    pass\n"
	r := newTestRunner(t, map[string]string{
		"broken.py": broken,
		"README.md": "# Project\n\nNotes.\n\n## Setup\n",
	})
	ctx := context.Background()

	got, err := r.RenderFile(ctx, "broken.py", types.Signature, types.NumbersDisabled)
	require.NoError(t, err)
	assert.Equal(t, broken, got)

	got, err = r.RenderFile(ctx, "README.md", types.Full, types.NumbersEnabled)
	require.NoError(t, err)
	assert.Equal(t, "1 |# Project\n2 |\n3 |Notes.\n4 |\n5 |## Setup\n", got)

	got, err = r.RenderFile(ctx, "README.md", types.Signature, types.NumbersEnabled)
	require.NoError(t, err)
	assert.Equal(t, "1 |# Project\n5 |## Setup\n", got)
}

func TestRunner_RenderFile_NotFound(t *testing.T) {
	r := newTestRunner(t, map[string]string{"shapes.py": shapesSource})
	ctx := context.Background()

	_, err := r.RenderFile(ctx, "missing.py", types.Full, types.NumbersDisabled)
	assert.ErrorIs(t, err, repomap.ErrNotFound)

	_, err = r.RenderFile(ctx, "notes.txt", types.Full, types.NumbersDisabled)
	assert.ErrorIs(t, err, repomap.ErrNotFound)
}

func TestRunner_Show(t *testing.T) {
	r := newTestRunner(t, map[string]string{"shapes.py": shapesSource})
	ctx := context.Background()

	tests := []struct {
		name  string
		query Query
		level types.DetailLevel
		want  string
	}{
		{
			name:  "function signature",
			query: Query{Kind: QueryFunction, Path: "shapes.py", Name: "perimeter"},
			level: types.Signature,
			want:  "def perimeter(r):\n",
		},
		{
			name:  "method full",
			query: Query{Kind: QueryMethod, Path: "shapes.py", Class: "Circle", Name: "area"},
			level: types.Full,
			want:  "    def area(self):\n        return area(self.r)\n",
		},
		{
			name:  "class signature lists members",
			query: Query{Kind: QueryClass, Path: "shapes.py", Name: "Circle"},
			level: types.Signature,
			want:  "class Circle:\n    UNIT = \"cm\"\n\n    def __init__(self, r):\n\n    def area(self):\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Show(ctx, tt.query, tt.level, types.NumbersDisabled)
			require.NoError(t, err)
			require.True(t, res.Found)
			assert.Equal(t, tt.want, res.Text)
		})
	}
}

func TestRunner_Show_MissSuggests(t *testing.T) {
	r := newTestRunner(t, map[string]string{"shapes.py": shapesSource})
	ctx := context.Background()

	res, err := r.Show(ctx, Query{Kind: QueryFunction, Path: "shapes.py", Name: "areas"}, types.Full, types.NumbersDisabled)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Text)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "area", res.Suggestions[0])

	res, err = r.Show(ctx, Query{Kind: QueryMethod, Path: "shapes.py", Class: "Circel", Name: "area"}, types.Full, types.NumbersDisabled)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, []string{"Circle"}, res.Suggestions)
}

func TestRunner_Show_RawFileMisses(t *testing.T) {
	r := newTestRunner(t, map[string]string{"broken.py": "def broken(:\n"})

	res, err := r.Show(context.Background(), Query{Kind: QueryFunction, Path: "broken.py", Name: "broken"}, types.Full, types.NumbersDisabled)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Suggestions)
}

func TestRunner_Show_ClassRenderLimit(t *testing.T) {
	dir := setupPythonRepo(t, map[string]string{"shapes.py": shapesSource})
	ctx := context.Background()
	q := Query{Kind: QueryClass, Path: "shapes.py", Name: "Circle"}

	unbounded, err := NewRunner(Deps{WorkDir: dir}).Show(ctx, q, types.Moderate, types.NumbersDisabled)
	require.NoError(t, err)
	assert.Contains(t, unbounded.Text, "A circle.")

	bounded, err := NewRunner(Deps{WorkDir: dir, ClassRenderLimit: 20}).Show(ctx, q, types.Moderate, types.NumbersDisabled)
	require.NoError(t, err)
	require.True(t, bounded.Found)
	assert.NotContains(t, bounded.Text, "A circle.")
	assert.True(t, strings.HasPrefix(bounded.Text, "class Circle:\n    UNIT"))
}

func TestRunner_Excerpt(t *testing.T) {
	r := newTestRunner(t, map[string]string{"shapes.py": shapesSource})

	got, err := r.Excerpt(context.Background(), "shapes.py", 5, 5, 1, types.NumbersEnabled)
	require.NoError(t, err)
	assert.Equal(t, " 4 |\n 5 |def area(r):\n 6 |    return math.pi * r * r\n", got)
}

func TestRunner_Outline(t *testing.T) {
	r := newTestRunner(t, map[string]string{"shapes.py": shapesSource})

	entries, err := r.Outline(context.Background(), "shapes.py")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"", "area", "perimeter", "Circle", "Circle.UNIT", "Circle.__init__", "Circle.area"}, names)
}

func TestRunner_Map(t *testing.T) {
	r := newTestRunner(t, map[string]string{
		"shapes.py": shapesSource,
		"app/main.py": "from shapes import Circle, perimeter\n\n\ndef main():\n" +
			"    c = Circle(2)\n    print(c.area(), perimeter(2))\n",
	})

	result, err := r.Map(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalFiles)
	assert.True(t, strings.HasPrefix(result.Map, "Repository map ("))
	assert.Contains(t, result.Map, "shapes.py\n")
	assert.Contains(t, result.Map, "class Circle:")
	assert.Less(t, strings.Index(result.Map, "shapes.py\n"), strings.Index(result.Map, "app/main.py\n"))
}

func TestRunner_Dirs(t *testing.T) {
	r := newTestRunner(t, map[string]string{
		"pkg/a/mod.py":  "X = 1\n",
		"pkg/b/c/m.py":  "Y = 2\n",
		"venv/lib/x.py": "Z = 3\n",
	})
	ctx := context.Background()

	all, err := r.Dirs(ctx, "", -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg", "pkg/a", "pkg/b", "pkg/b/c"}, all)

	shallow, err := r.Dirs(ctx, "pkg", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg", "pkg/a", "pkg/b"}, shallow)
}

func TestRunner_SharedExtractorCaches(t *testing.T) {
	dir := setupPythonRepo(t, map[string]string{"shapes.py": shapesSource})
	ext := repomap.NewExtractor(repomap.Config{})
	r := NewRunner(Deps{WorkDir: dir, Extractor: ext})
	ctx := context.Background()

	first, err := r.File(ctx, "shapes.py")
	require.NoError(t, err)
	second, err := r.File(ctx, "shapes.py")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestQueryKind_String(t *testing.T) {
	assert.Equal(t, "function", QueryFunction.String())
	assert.Equal(t, "class", QueryClass.String())
	assert.Equal(t, "method", QueryMethod.String())
	assert.Equal(t, "QueryKind(9)", QueryKind(9).String())
}
