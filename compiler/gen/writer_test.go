package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlproc/compiler/load"
)

func TestUnitFileName(t *testing.T) {
	t.Run("derived from the interface name", func(t *testing.T) {
		u := &Unit{Name: "PersonQueries"}
		assert.Equal(t, "zz_person_queries_gen.go", UnitFileName(u))
	})
	t.Run("name override wins", func(t *testing.T) {
		u := &Unit{Name: "PersonQueries", OutName: "people"}
		assert.Equal(t, "zz_people_gen.go", UnitFileName(u))
	})
}

func TestWriteAll(t *testing.T) {
	target := t.TempDir()
	iface := testInterface(&load.Method{
		Name:   "Purge",
		Proc:   "purge_expired",
		HasCtx: true,
	})
	units := []*Unit{NewUnit(iface)}

	w := NewWriter(MustNewConfig(WithTarget(target)))
	require.NoError(t, w.WriteAll(context.Background(), units))

	data, err := os.ReadFile(filepath.Join(target, "zz_person_queries_gen.go"))
	require.NoError(t, err)
	src := string(data)
	assert.Contains(t, src, "// Code generated by sqlproc. DO NOT EDIT.")
	assert.Contains(t, src, "package store")
	assert.Contains(t, src, "func (_impl *PersonQueriesImpl) Purge(ctx context.Context) error")
}

func TestWriteAllDeterministic(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "FindPeople",
		Proc:   "find_people",
		HasCtx: true,
		Params: []*load.Param{
			{Name: "minAge", Type: basicRef("int32")},
		},
		Result: sliceRef(personRef()),
	})
	iface.Carrier = contextCarrier(appData())

	read := func(t *testing.T) string {
		target := t.TempDir()
		w := NewWriter(MustNewConfig(WithTarget(target), WithWorkers(4)))
		require.NoError(t, w.WriteAll(context.Background(), []*Unit{NewUnit(iface)}))
		data, err := os.ReadFile(filepath.Join(target, "zz_person_queries_gen.go"))
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, read(t), read(t))
}

func TestWriteAllReportsEmitFailure(t *testing.T) {
	iface := testInterface(&load.Method{
		Name:   "Bad",
		Proc:   "bad",
		HasCtx: true,
		Result: sliceRef(basicRef("string")),
	})
	w := NewWriter(MustNewConfig(WithTarget(t.TempDir())))
	err := w.WriteAll(context.Background(), []*Unit{NewUnit(iface)})
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
	assert.Contains(t, err.Error(), "PersonQueries")
}
