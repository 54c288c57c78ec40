package load

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	t.Run("verb only", func(t *testing.T) {
		d, ok := parseDirective("//sqlproc:queries")
		require.True(t, ok)
		assert.Equal(t, "queries", d.Verb)
		assert.Empty(t, d.Arg)
	})
	t.Run("positional argument and options", func(t *testing.T) {
		d, ok := parseDirective("//sqlproc:proc count_people out=total,cursor inout=seed")
		require.True(t, ok)
		assert.Equal(t, "proc", d.Verb)
		assert.Equal(t, "count_people", d.Arg)
		assert.Equal(t, []string{"total", "cursor"}, d.List("out"))
		assert.Equal(t, []string{"seed"}, d.List("inout"))
	})
	t.Run("missing option yields nil", func(t *testing.T) {
		d, ok := parseDirective("//sqlproc:query")
		require.True(t, ok)
		assert.Nil(t, d.List("out"))
	})
	t.Run("ordinary comments are not directives", func(t *testing.T) {
		_, ok := parseDirective("// sqlproc:proc spaced out")
		assert.False(t, ok)
		_, ok = parseDirective("// plain comment")
		assert.False(t, ok)
		_, ok = parseDirective("//sqlproc:")
		assert.False(t, ok)
	})
}

func TestDirectives(t *testing.T) {
	doc := &ast.CommentGroup{List: []*ast.Comment{
		{Text: "// PersonQueries groups the person procedures."},
		{Text: "//sqlproc:queries impl=Store"},
	}}
	ds := directives(doc)
	require.Len(t, ds, 1)
	assert.Equal(t, "queries", ds[0].Verb)
	assert.Equal(t, "Store", ds[0].Opts["impl"])

	d, ok := findDirective(ds, "queries")
	require.True(t, ok)
	assert.Equal(t, "Store", d.Opts["impl"])
	_, ok = findDirective(ds, "proc")
	assert.False(t, ok)

	assert.Nil(t, directives(nil))
}
