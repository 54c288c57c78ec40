package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlproc/compiler/load"
)

func render(t *testing.T, u *Unit) string {
	t.Helper()
	f, err := NewEmitter(nil).EmitUnit(u)
	require.NoError(t, err)
	return f.GoString()
}

func TestEmitScalarWithOutParam(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "CountPeople",
		Proc:   "count_people",
		HasCtx: true,
		Params: []*load.Param{
			{Name: "minAge", Type: basicRef("int32")},
			{Name: "total", Type: ptrRef(basicRef("int64")), Out: true},
		},
		Result: basicRef("int32"),
	})
	iface.Carrier = contextCarrier(appData())
	src := render(t, NewUnit(iface))

	assert.Contains(t, src, "func (_impl *PersonQueriesImpl) CountPeople(ctx context.Context, minAge int32, total *int64) (int32, error)")
	assert.Contains(t, src, "var v0 sql.Null[int64]")
	assert.Contains(t, src, `cmd := "count_people @min_age, @total OUTPUT"`)
	assert.Contains(t, src, `sql.Named("min_age", minAge)`)
	assert.Contains(t, src, "sql.Out{")
	assert.Contains(t, src, "Dest: &v0")
	assert.Contains(t, src, "conn, err := _impl.data.DB().Conn(ctx)")
	assert.Contains(t, src, "defer conn.Close()")
	assert.Contains(t, src, "var ret int32")
	assert.Contains(t, src, "if err := conn.QueryRowContext(ctx, cmd, args...).Scan(&ret); err != nil {")
	assert.Contains(t, src, "*total = v0.V")
	assert.Contains(t, src, "return ret, nil")
}

func TestEmitScalarFromRawCommand(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "CountMatching",
		Query:  true,
		HasCtx: true,
		Params: []*load.Param{
			{Name: "query", Type: namedRef(load.MarkerPkgPath, "Raw"), Raw: true},
			{Name: "clientID", Type: basicRef("int32")},
			{Name: "personID", Type: ptrRef(basicRef("string"))},
		},
		Result: basicRef("int32"),
	})
	iface.Carrier = contextCarrier(appData())
	src := render(t, NewUnit(iface))

	assert.Contains(t, src, "cmd := string(query)")
	assert.Contains(t, src, `sql.Named("client_id", clientID)`)
	assert.Contains(t, src, `sql.Named("person_id", runtime.NullIfNil(personID))`)
	assert.Contains(t, src, "conn, err := _impl.data.DB().Conn(ctx)")
	assert.Contains(t, src, "defer conn.Close()")
	assert.Contains(t, src, "var ret int32")
}

func TestEmitNullableScalarResult(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "NicknameOf",
		Proc:   "nickname_of",
		HasCtx: true,
		Params: []*load.Param{
			{Name: "personID", Type: basicRef("int64")},
		},
		Result: ptrRef(basicRef("string")),
	})
	iface.Carrier = contextCarrier(appData())
	src := render(t, NewUnit(iface))

	assert.Contains(t, src, "var ret sql.Null[string]")
	assert.Contains(t, src, "return runtime.NullPtr(ret), nil")
	assert.Contains(t, src, "return nil, err")
}

func TestEmitRowMapping(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "FindPeople",
		Proc:   "find_people",
		HasCtx: true,
		Params: []*load.Param{
			{Name: "minAge", Type: basicRef("int32")},
		},
		Result: sliceRef(personRef()),
	})
	iface.Carrier = dbCarrier()
	src := render(t, NewUnit(iface))

	assert.Contains(t, src, "rows, err := _impl.db.QueryContext(ctx, cmd, args...)")
	assert.Contains(t, src, "out := make([]Person, 0)")
	assert.Contains(t, src, "for rows.Next() {")
	assert.Contains(t, src, "var e Person")
	assert.Contains(t, src, "var c2 sql.Null[int32]")
	assert.Contains(t, src, "if err := rows.Scan(&e.Name, &e.Age, &c2); err != nil {")
	assert.Contains(t, src, "e.Score = runtime.NullPtr(c2)")
	assert.Contains(t, src, "out = append(out, e)")
	assert.Contains(t, src, "if err := rows.Err(); err != nil {")
	assert.Contains(t, src, "if err := rows.Close(); err != nil {")
	assert.Contains(t, src, "return out, nil")
}

func TestEmitRowMappingSingleEntity(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "FirstPerson",
		Proc:   "first_person",
		HasCtx: true,
		Result: ptrRef(personRef()),
	})
	iface.Carrier = dbCarrier()
	src := render(t, NewUnit(iface))

	assert.Contains(t, src, "rows, err := _impl.db.QueryContext(ctx, cmd)")
	assert.Contains(t, src, "var out *Person")
	assert.Contains(t, src, "if rows.Next() {")
	assert.Contains(t, src, "out = &e")
}

func TestEmitTableQuery(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "Search",
		Query:  true,
		HasCtx: true,
		Params: []*load.Param{
			{Name: "query", Type: namedRef(load.MarkerPkgPath, "Raw"), Raw: true},
			{Name: "city", Type: ptrRef(basicRef("string"))},
		},
		Result: sliceRef(personRef()),
	})
	iface.Carrier = contextCarrier(appData())
	src := render(t, NewUnit(iface))

	assert.Contains(t, src, "cmd := string(query)")
	assert.Contains(t, src, `sql.Named("city", runtime.NullIfNil(city))`)
	assert.Contains(t, src, "res, err := _impl.data.People.Raw(cmd, args...).All(ctx)")
	assert.Contains(t, src, "return res, nil")
}

func TestEmitTableFirst(t *testing.T) {
	iface := testInterface(
		&load.Method{
			Name:   "PersonByID",
			Proc:   "person_by_id",
			HasCtx: true,
			Params: []*load.Param{{Name: "id", Type: basicRef("int64")}},
			Result: personRef(),
		},
		&load.Method{
			Name:   "MaybePersonByID",
			Proc:   "person_by_id",
			HasCtx: true,
			Params: []*load.Param{{Name: "id", Type: basicRef("int64")}},
			Result: ptrRef(personRef()),
		},
	)
	iface.Carrier = contextCarrier(appData())
	src := render(t, NewUnit(iface))

	assert.Contains(t, src, ".Raw(cmd, args...).First(ctx)")
	assert.Contains(t, src, ".Raw(cmd, args...).FirstPtr(ctx)")
}

func TestEmitPointerElementsFallBackToRowMapping(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "AllPeople",
		Proc:   "all_people",
		HasCtx: true,
		Result: sliceRef(ptrRef(personRef())),
	})
	iface.Carrier = contextCarrier(appData())
	src := render(t, NewUnit(iface))

	assert.Contains(t, src, "rows, err := _impl.data.DB().QueryContext(ctx, cmd)")
	assert.Contains(t, src, "out := make([]*Person, 0)")
	assert.Contains(t, src, "out = append(out, &e)")
	assert.NotContains(t, src, ".Raw(")
}

func TestEmitExecOnly(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "AdvanceCursor",
		Proc:   "advance_cursor",
		HasCtx: true,
		Params: []*load.Param{
			{Name: "cursor", Type: ptrRef(basicRef("int64")), InOut: true},
		},
	})
	iface.Carrier = contextCarrier(appData())
	src := render(t, NewUnit(iface))

	assert.Contains(t, src, "v0 := runtime.NullFrom(cursor)")
	assert.Contains(t, src, "In:   true")
	assert.Contains(t, src, "if _, err := _impl.data.DB().ExecContext(ctx, cmd, args...); err != nil {")
	assert.Contains(t, src, "*cursor = v0.V")
	assert.Contains(t, src, "return nil")
}

func TestEmitContextFallback(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "Purge",
		Proc:   "purge_expired",
		HasCtx: false,
	})
	iface.Carrier = contextCarrier(appData())
	src := render(t, NewUnit(iface))

	assert.Contains(t, src, "func (_impl *PersonQueriesImpl) Purge() error")
	assert.Contains(t, src, "ctx := context.Background()")
	assert.Contains(t, src, `cmd := "purge_expired"`)
	assert.NotContains(t, src, "args :=")
}

func TestEmitCarrierSynthesis(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "Purge",
		Proc:   "purge_expired",
		HasCtx: true,
	})
	src := render(t, NewUnit(iface))

	assert.Contains(t, src, "// Code generated by sqlproc. DO NOT EDIT.")
	assert.Contains(t, src, "type PersonQueriesImpl struct {")
	assert.Contains(t, src, "data *runtime.Context")
	assert.Contains(t, src, "func NewPersonQueriesImpl(data *runtime.Context) *PersonQueriesImpl {")
	assert.Contains(t, src, "var _ PersonQueries = (*PersonQueriesImpl)(nil)")
}

func TestEmitSkipsCarrierWhenDeclared(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "Purge",
		Proc:   "purge_expired",
		HasCtx: true,
	})
	iface.Carrier = dbCarrier()
	src := render(t, NewUnit(iface))

	assert.NotContains(t, src, "type PersonQueriesImpl struct")
	assert.Contains(t, src, "var _ PersonQueries = (*PersonQueriesImpl)(nil)")
}

func TestEmitDeterministic(t *testing.T) {
	iface := testInterface(
		&load.Method{
			Name:   "FindPeople",
			Proc:   "find_people",
			HasCtx: true,
			Params: []*load.Param{
				{Name: "minAge", Type: basicRef("int32")},
				{Name: "total", Type: ptrRef(basicRef("int64")), Out: true},
			},
			Result: sliceRef(personRef()),
		},
		&load.Method{
			Name:   "Purge",
			Proc:   "purge_expired",
			HasCtx: true,
		},
	)
	iface.Carrier = contextCarrier(appData())
	first := render(t, NewUnit(iface))
	second := render(t, NewUnit(iface))
	assert.Equal(t, first, second)
}

func TestEmitRejectsUnsupportedResult(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "Bad",
		Proc:   "bad",
		HasCtx: true,
		Result: sliceRef(basicRef("string")),
	})
	_, err := NewEmitter(nil).EmitUnit(NewUnit(iface))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestEmitCustomHeader(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "Purge",
		Proc:   "purge_expired",
		HasCtx: true,
	})
	cfg := MustNewConfig(WithHeader("Code generated by tooling; do not edit."))
	f, err := NewEmitter(cfg).EmitUnit(NewUnit(iface))
	require.NoError(t, err)
	assert.Contains(t, f.GoString(), "// Code generated by tooling; do not edit.")
}
