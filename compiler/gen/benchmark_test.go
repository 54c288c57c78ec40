package gen

import (
	"testing"

	"github.com/syssam/sqlproc/compiler/load"
)

func benchmarkUnit() *Unit {
	iface := testInterface(
		&load.Method{
			Name:   "FindPeople",
			Proc:   "find_people",
			HasCtx: true,
			Params: []*load.Param{
				{Name: "minAge", Type: basicRef("int32")},
			},
			Result: sliceRef(personRef()),
		},
		&load.Method{
			Name:   "CountPeople",
			Proc:   "count_people",
			HasCtx: true,
			Params: []*load.Param{
				{Name: "minAge", Type: basicRef("int32")},
				{Name: "total", Type: ptrRef(basicRef("int64")), Out: true},
			},
			Result: basicRef("int32"),
		},
		&load.Method{
			Name:   "Search",
			Query:  true,
			HasCtx: true,
			Params: []*load.Param{
				{Name: "query", Type: namedRef(load.MarkerPkgPath, "Raw"), Raw: true},
				{Name: "name", Type: ptrRef(basicRef("string"))},
			},
			Result: sliceRef(personRef()),
		},
	)
	iface.Carrier = contextCarrier(appData())
	return NewUnit(iface)
}

func BenchmarkEmitUnit(b *testing.B) {
	u := benchmarkUnit()
	e := NewEmitter(nil)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		f, err := e.EmitUnit(u)
		if err != nil {
			b.Fatal(err)
		}
		_ = f.GoString()
	}
}

func BenchmarkClassify(b *testing.B) {
	refs := []*load.TypeRef{
		basicRef("int64"),
		ptrRef(basicRef("string")),
		personRef(),
		sliceRef(personRef()),
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, r := range refs {
			if _, err := Classify(r); err != nil {
				b.Fatal(err)
			}
		}
	}
}
