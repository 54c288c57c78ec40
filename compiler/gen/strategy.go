package gen

import (
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/sqlproc/compiler/load"
)

// StrategyKind is the tagged result of connection strategy resolution.
type StrategyKind int

const (
	// StrategyDB means the carrier declares a direct connection field; it
	// wins outright over a context field, and entities are materialized by
	// manual row mapping.
	StrategyDB StrategyKind = iota
	// StrategyContext means the carrier declares a field deriving from
	// runtime.Context; connections come from it and entities are
	// materialized through its Table accessors.
	StrategyContext
	// StrategyAssumedDefault means no suitable field was found; the
	// conventional identifier "data" is assumed without validation.
	StrategyAssumedDefault
)

// String returns the strategy name.
func (k StrategyKind) String() string {
	switch k {
	case StrategyContext:
		return "Context"
	case StrategyAssumedDefault:
		return "AssumedDefault"
	default:
		return "DB"
	}
}

// Strategy describes how generated code obtains a connection and, for the
// context strategies, which context type to search for entity-set accessors.
type Strategy struct {
	Kind    StrategyKind
	Field   string        // resolved or assumed field name on the carrier
	Context *load.TypeRef // context type for accessor resolution, nil otherwise
}

// DefaultContextField is the identifier assumed when no connection or
// context field is declared on the carrier.
const DefaultContextField = "data"

const sqlPkgPath = "database/sql"

// ResolveStrategy scans the carrier struct's fields once per enclosing type.
// A connection-handle field wins outright; otherwise the first field whose
// type derives from runtime.Context is used; otherwise the conventional
// default is assumed (degraded mode, no diagnostic).
func ResolveStrategy(carrier *load.TypeRef) Strategy {
	if carrier != nil {
		for _, f := range carrier.Fields {
			if isDBHandle(f.Type) {
				return Strategy{Kind: StrategyDB, Field: f.Name}
			}
		}
		for _, f := range carrier.Fields {
			if t := contextType(f.Type); t != nil {
				return Strategy{Kind: StrategyContext, Field: f.Name, Context: t}
			}
		}
	}
	return Strategy{Kind: StrategyAssumedDefault, Field: DefaultContextField}
}

// EntityAccessor resolves the entity-set accessor name for the given entity:
// first a Table field on the context whose item type matches, then the
// pluralized type name when no declared accessor matches.
func (s Strategy) EntityAccessor(entity *load.TypeRef) string {
	if s.Context != nil {
		for _, f := range s.Context.Fields {
			if f.Type.Is(load.RuntimePkgPath, "Table") && len(f.Type.Args) == 1 &&
				sameEntity(f.Type.Args[0], entity) {
				return f.Name
			}
		}
	}
	return titleCase(inflect.Pluralize(entity.Name))
}

func sameEntity(a, b *load.TypeRef) bool {
	if a != nil && a.Kind == load.KindPointer {
		a = a.Elem
	}
	if b != nil && b.Kind == load.KindPointer {
		b = b.Elem
	}
	return a != nil && b != nil && a.Kind == load.KindNamed &&
		a.PkgPath == b.PkgPath && a.Name == b.Name
}

// isDBHandle reports whether the field type is (or embeds) *sql.DB.
func isDBHandle(r *load.TypeRef) bool {
	if r == nil {
		return false
	}
	if r.Kind == load.KindPointer {
		return r.Elem.Is(sqlPkgPath, "DB")
	}
	if r.Kind == load.KindNamed {
		for _, f := range r.Fields {
			if f.Embedded && isDBHandle(f.Type) {
				return true
			}
		}
	}
	return false
}

// contextType returns the defined context type when the field type is (or
// derives from, via its embedded base chain) runtime.Context.
func contextType(r *load.TypeRef) *load.TypeRef {
	if r == nil {
		return nil
	}
	if r.Kind == load.KindPointer {
		r = r.Elem
	}
	if r.Is(load.RuntimePkgPath, "Context") {
		return r
	}
	if r.Kind != load.KindNamed {
		return nil
	}
	for _, f := range r.Fields {
		if f.Embedded && contextType(f.Type) != nil {
			return r
		}
	}
	return nil
}

// titleCase capitalizes the first letter of a string.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
