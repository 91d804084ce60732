package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJava = `package com.example;

import java.util.List;
import java.util.*;
import static java.lang.Math.max;

public class Sample {
    public int sum(List<Integer> xs) {
        int total = 0;
        for (int x : xs) {
            total += x;
        }
        return total;
    }

    abstract static class Shape {
        abstract double area();
    }

    void noop() {
        // nothing
    }
}
`

func parse(t *testing.T, src string) *ParseResult {
	t.Helper()
	p := New()
	t.Cleanup(p.Close)
	result, err := p.Parse([]byte(src), "Sample.java")
	require.NoError(t, err)
	t.Cleanup(result.Close)
	return result
}

func TestNew(t *testing.T) {
	p := New()
	require.NotNil(t, p)
	assert.NotNil(t, p.parser)
	p.Close()
}

func TestIsJava(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"Main.java", true},
		{"src/com/example/Foo.JAVA", true},
		{"main.go", false},
		{"Makefile", false},
		{"notes.java.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsJava(tt.path))
		})
	}
}

func TestParse_Valid(t *testing.T) {
	result := parse(t, sampleJava)
	assert.Equal(t, "program", result.Root().Type())
	assert.False(t, result.Root().HasError())
	assert.Equal(t, "Sample.java", result.Path)
}

func TestParse_SyntaxError(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse([]byte("public class Broken { void m( { }"), "Broken.java")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Broken.java", perr.Path)
	assert.GreaterOrEqual(t, perr.Line, 1)
	assert.Contains(t, perr.Error(), "syntax error")
}

func TestParse_TopLevelStatements(t *testing.T) {
	p := New()
	defer p.Close()

	for _, src := range []string{
		"int x = 42;",
		"System.out.println(42);",
		"class T {}\nint y = 1;",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := p.Parse([]byte(src), "T.java")
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.GreaterOrEqual(t, perr.Line, 1)
		})
	}
}

func TestParse_CompilationUnits(t *testing.T) {
	p := New()
	defer p.Close()

	for _, src := range []string{
		"",
		"// header\npackage p;\nimport a.B;\n/* doc */\nclass T {}",
		"interface I {}\nenum E { A }\nrecord R(int x) {}\n@interface Marker {}",
	} {
		t.Run(src, func(t *testing.T) {
			result, err := p.Parse([]byte(src), "T.java")
			require.NoError(t, err)
			result.Close()
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Sample.java")
	require.NoError(t, os.WriteFile(path, []byte(sampleJava), 0o644))

	p := New()
	defer p.Close()

	result, err := p.ParseFile(path)
	require.NoError(t, err)
	defer result.Close()
	assert.Equal(t, path, result.Path)

	_, err = p.ParseFile(filepath.Join(dir, "missing.java"))
	assert.Error(t, err)
}

func TestMethods(t *testing.T) {
	result := parse(t, sampleJava)
	methods := result.Methods()
	require.Len(t, methods, 3)

	assert.Equal(t, "sum", methods[0].Name)
	assert.Equal(t, 8, methods[0].StartLine)
	assert.Equal(t, 14, methods[0].EndLine)
	assert.NotNil(t, methods[0].Body)

	assert.Equal(t, "area", methods[1].Name)
	assert.Nil(t, methods[1].Body)

	assert.Equal(t, "noop", methods[2].Name)
	assert.Equal(t, 0, StatementCount(methods[2].Body))
}

func TestImports(t *testing.T) {
	result := parse(t, sampleJava)
	imports := result.Imports()
	require.Len(t, imports, 3)

	assert.Equal(t, Import{Name: "java.util.List", Line: 3}, imports[0])
	assert.Equal(t, "List", imports[0].LastSegment())

	assert.Equal(t, "java.util", imports[1].Name)
	assert.True(t, imports[1].Wildcard)

	assert.True(t, imports[2].Static)
	assert.Equal(t, "max", imports[2].LastSegment())
}

func TestFindNodesByType(t *testing.T) {
	result := parse(t, sampleJava)
	loops := FindNodesByType(result.Root(), result.Source, "enhanced_for_statement")
	require.Len(t, loops, 1)
	assert.Equal(t, 10, StartLine(loops[0]))
	assert.Equal(t, 12, EndLine(loops[0]))
}

func TestWalkTyped_StopsDescent(t *testing.T) {
	result := parse(t, sampleJava)
	var seen int
	WalkTyped(result.Root(), result.Source, func(node *sitter.Node, nodeType string, _ []byte) bool {
		if nodeType == "class_body" {
			return false
		}
		if nodeType == "method_declaration" {
			seen++
		}
		return true
	})
	assert.Zero(t, seen)
}

func TestGetNodeText(t *testing.T) {
	result := parse(t, sampleJava)
	methods := result.Methods()
	name := methods[0].Node.ChildByFieldName("name")
	assert.Equal(t, "sum", GetNodeText(name, result.Source))
	assert.Empty(t, GetNodeText(nil, result.Source))
	assert.Empty(t, GetNodeText(name, []byte("x")))
}

func TestSameNode(t *testing.T) {
	result := parse(t, sampleJava)
	methods := result.Methods()
	assert.True(t, SameNode(methods[0].Node, methods[0].Node))
	assert.False(t, SameNode(methods[0].Node, methods[2].Node))
	assert.False(t, SameNode(methods[0].Node, nil))
	assert.True(t, SameNode(nil, nil))
}

func TestLineAt(t *testing.T) {
	src := "a\r\nb\nc"
	assert.Equal(t, []string{"a", "b", "c"}, Lines(src))
	assert.Equal(t, "b", LineAt(src, 2))
	assert.Empty(t, LineAt(src, 0))
	assert.Empty(t, LineAt(src, 4))
}
