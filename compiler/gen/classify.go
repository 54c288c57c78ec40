package gen

import (
	"github.com/syssam/sqlproc/compiler/load"
)

// Kind is the classification of a declared type.
type Kind int

const (
	// KindScalar is a primitive value with a direct database type tag.
	KindScalar Kind = iota
	// KindEntity is a non-scalar type representing one row of mapped data.
	KindEntity
	// KindEntityCollection is a slice of entities.
	KindEntityCollection
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "Entity"
	case KindEntityCollection:
		return "EntityCollection"
	default:
		return "Scalar"
	}
}

// DBType is the closed enumeration of database type tags. Anything outside
// it is a hard error, never a default pass-through.
type DBType int

const (
	DBUnknown DBType = iota
	DBNVarChar
	DBBit
	DBTinyInt
	DBSmallInt
	DBInt
	DBBigInt
	DBUTinyInt
	DBUSmallInt
	DBUInt
	DBUBigInt
	DBReal
	DBFloat
	DBDecimal
	DBDateTime2
)

var dbTypeNames = [...]string{
	DBUnknown:   "Unknown",
	DBNVarChar:  "NVarChar",
	DBBit:       "Bit",
	DBTinyInt:   "TinyInt",
	DBSmallInt:  "SmallInt",
	DBInt:       "Int",
	DBBigInt:    "BigInt",
	DBUTinyInt:  "UTinyInt",
	DBUSmallInt: "USmallInt",
	DBUInt:      "UInt",
	DBUBigInt:   "UBigInt",
	DBReal:      "Real",
	DBFloat:     "Float",
	DBDecimal:   "Decimal",
	DBDateTime2: "DateTime2",
}

// String returns the tag name.
func (t DBType) String() string {
	if int(t) < len(dbTypeNames) {
		return dbTypeNames[t]
	}
	return "Unknown"
}

// Classification is the derived description of one declared type. It is
// recomputed per type encountered; classification is a pure function of the
// type reference, so the same type always classifies the same way within a
// generation pass.
type Classification struct {
	Kind     Kind
	DBType   DBType        // set for scalars
	Nullable bool          // the type was pointer-wrapped
	Under    *load.TypeRef // the unwrapped type
}

const decimalPkgPath = "github.com/shopspring/decimal"

// Classify maps a type reference to its classification. A pointer wrapper
// marks the classification nullable and recurses into the wrapped type. A
// slice over a non-scalar type is an entity collection. A primitive outside
// the enumerated scalar set is a hard TypeError.
func Classify(ref *load.TypeRef) (Classification, error) {
	c := Classification{Under: ref}
	if ref == nil {
		return c, NewTypeError("", "", "", "<nil>", "no type to classify")
	}
	if ref.Kind == load.KindPointer {
		c.Nullable = true
		ref = ref.Elem
		c.Under = ref
	}
	if db, ok := scalarOf(ref); ok {
		c.Kind = KindScalar
		c.DBType = db
		return c, nil
	}
	switch ref.Kind {
	case load.KindSlice:
		if c.Nullable {
			return c, NewTypeError("", "", "", ref.String(), "collections cannot be pointer-wrapped")
		}
		item := ref.Elem
		if item.Kind == load.KindPointer {
			item = item.Elem
		}
		if _, ok := scalarOf(item); ok {
			return c, NewTypeError("", "", "", ref.String(), "collections of scalars are not supported")
		}
		if item.Kind != load.KindNamed {
			return c, NewTypeError("", "", "", ref.String(), "collection item must be an entity type")
		}
		c.Kind = KindEntityCollection
		c.Under = item
		return c, nil
	case load.KindNamed:
		c.Kind = KindEntity
		return c, nil
	default:
		return c, NewTypeError("", "", "", ref.String(), "no database type mapping")
	}
}

// ScalarDBType resolves the database type tag of a scalar type, unwrapping a
// pointer first. It fails with a TypeError when the type has no scalar
// mapping; callers binding Out/InOut parameters rely on that failure being
// hard.
func ScalarDBType(ref *load.TypeRef) (DBType, error) {
	if ref != nil && ref.Kind == load.KindPointer {
		ref = ref.Elem
	}
	if db, ok := scalarOf(ref); ok {
		return db, nil
	}
	return DBUnknown, NewTypeError("", "", "", ref.String(), "no database type mapping")
}

func scalarOf(ref *load.TypeRef) (DBType, bool) {
	if ref == nil {
		return DBUnknown, false
	}
	switch ref.Kind {
	case load.KindBasic:
		return basicDBType(ref.Name)
	case load.KindNamed:
		switch {
		case ref.Is("time", "Time"):
			return DBDateTime2, true
		case ref.Is(decimalPkgPath, "Decimal"):
			return DBDecimal, true
		case ref.Is(load.MarkerPkgPath, "Raw"):
			return DBNVarChar, true
		case ref.Under != nil:
			return basicDBType(ref.Under.Name)
		}
	}
	return DBUnknown, false
}

func basicDBType(name string) (DBType, bool) {
	switch name {
	case "string":
		return DBNVarChar, true
	case "bool":
		return DBBit, true
	case "int8":
		return DBSmallInt, true
	case "int16":
		return DBSmallInt, true
	case "int32", "int":
		return DBInt, true
	case "int64":
		return DBBigInt, true
	case "uint8":
		return DBUTinyInt, true
	case "uint16":
		return DBUSmallInt, true
	case "uint32":
		return DBUInt, true
	case "uint64", "uint":
		return DBUBigInt, true
	case "float32":
		return DBReal, true
	case "float64":
		return DBFloat, true
	default:
		return DBUnknown, false
	}
}
