package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlproc/compiler/load"
)

func testInterface(methods ...*load.Method) *load.Interface {
	return &load.Interface{
		Name:     "PersonQueries",
		PkgPath:  testPkgPath,
		PkgName:  "store",
		Dir:      "store",
		ImplName: "PersonQueriesImpl",
		Methods:  methods,
	}
}

func TestNewUnit(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "FindPeople",
		Proc:   "find_people",
		HasCtx: true,
		Params: []*load.Param{
			{Name: "minAge", Type: basicRef("int32")},
			{Name: "maxCount", Type: ptrRef(basicRef("int64")), Out: true},
		},
		Result: sliceRef(personRef()),
	})
	u := NewUnit(iface)
	assert.Equal(t, "PersonQueries", u.Name)
	assert.Equal(t, "PersonQueriesImpl", u.ImplName)
	assert.Equal(t, StrategyAssumedDefault, u.Strategy.Kind)
	require.Len(t, u.Bindings, 1)

	b := u.Bindings[0]
	assert.Equal(t, SourceProcedure, b.Source.Kind)
	assert.Equal(t, "find_people", b.Source.Proc)
	assert.True(t, b.HasCtx)
	require.Len(t, b.Params, 2)
	assert.Equal(t, "min_age", b.Params[0].External)
	assert.Equal(t, In, b.Params[0].Direction)
	assert.Equal(t, "max_count", b.Params[1].External)
	assert.Equal(t, Out, b.Params[1].Direction)
}

func TestNewUnitRawCommand(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:  "Search",
		Query: true,
		Params: []*load.Param{
			{Name: "query", Type: namedRef(load.MarkerPkgPath, "Raw"), Raw: true},
			{Name: "name", Type: basicRef("string")},
		},
		Result: sliceRef(personRef()),
	})
	b := NewUnit(iface).Bindings[0]
	assert.Equal(t, SourceRawText, b.Source.Kind)
	assert.Equal(t, "query", b.Source.RawParam)

	bound := b.Bound()
	require.Len(t, bound, 1)
	assert.Equal(t, "name", bound[0].Name)
}

func TestPlanParamsOrder(t *testing.T) {
	iface := testInterface(&load.Method{
		Name: "Mixed",
		Proc: "mixed",
		Params: []*load.Param{
			{Name: "first", Type: basicRef("string")},
			{Name: "second", Type: ptrRef(basicRef("int32")), Out: true},
			{Name: "third", Type: ptrRef(basicRef("string"))},
			{Name: "fourth", Type: ptrRef(basicRef("int64")), InOut: true},
		},
	})
	u := NewUnit(iface)
	plan, err := planParams(u, u.Bindings[0])
	require.NoError(t, err)
	require.Len(t, plan, 4)

	names := make([]string, len(plan))
	for i, bp := range plan {
		names[i] = bp.Param.Name
	}
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, names)

	assert.Empty(t, plan[0].Dest)
	assert.Equal(t, "v0", plan[1].Dest)
	assert.Equal(t, DBInt, plan[1].DBType)
	assert.Empty(t, plan[2].Dest)
	assert.True(t, plan[2].Nullable)
	assert.Equal(t, "v1", plan[3].Dest)
	assert.Equal(t, DBBigInt, plan[3].DBType)

	out := outParams(plan)
	require.Len(t, out, 2)
	assert.Equal(t, "second", out[0].Param.Name)
	assert.Equal(t, "fourth", out[1].Param.Name)
}

func TestPlanParamsRejectsUnmappedDirectional(t *testing.T) {
	iface := testInterface(&load.Method{
		Name: "Bad",
		Proc: "bad",
		Params: []*load.Param{
			{Name: "result", Type: ptrRef(personRef()), Out: true},
		},
	})
	u := NewUnit(iface)
	_, err := planParams(u, u.Bindings[0])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), "PersonQueries.Bad")
	assert.Contains(t, err.Error(), "result")
}
