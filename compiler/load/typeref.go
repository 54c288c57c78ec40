package load

import (
	"go/types"
	"strings"
)

// RefKind enumerates the shapes a TypeRef can take.
type RefKind int

const (
	// KindBasic is a predeclared basic type (int32, string, bool, ...).
	KindBasic RefKind = iota
	// KindNamed is a defined type, possibly a struct or a generic instance.
	KindNamed
	// KindPointer is the optionality wrapper *T.
	KindPointer
	// KindSlice is the collection wrapper []T.
	KindSlice
)

// TypeRef is the narrow type descriptor handed to the synthesis engine. It
// carries only what classification, binding and materialization need: the
// kind, the element of a wrapper, the ordinal exported fields of a struct,
// and the underlying basic type of a defined non-struct type. The gen
// package never inspects go/types directly.
type TypeRef struct {
	Kind    RefKind
	Name    string      // basic type name or defined type name
	PkgPath string      // import path for defined types, "" otherwise
	Elem    *TypeRef    // pointer/slice element
	Args    []*TypeRef  // type arguments of a generic instance
	Fields  []*FieldRef // exported struct fields in declaration order
	Under   *TypeRef    // underlying basic type of a defined non-struct type
}

// FieldRef is one struct field with its ordinal position preserved by slice
// order. Unexported fields are kept: strategy resolution inspects carrier
// fields that are conventionally unexported, while row mapping uses only the
// exported ones.
type FieldRef struct {
	Name     string
	Embedded bool
	Exported bool
	Type     *TypeRef
}

// Is reports whether the reference is the defined type pkgPath.name.
func (r *TypeRef) Is(pkgPath, name string) bool {
	return r != nil && r.Kind == KindNamed && r.PkgPath == pkgPath && r.Name == name
}

// Unwrap returns the element of a pointer or slice wrapper, or the reference
// itself. Comparing the result against the original reference is how the
// materializer distinguishes plain from wrapped return types.
func (r *TypeRef) Unwrap() *TypeRef {
	if r == nil {
		return nil
	}
	if r.Kind == KindPointer || r.Kind == KindSlice {
		return r.Elem
	}
	return r
}

// String renders the reference for diagnostics.
func (r *TypeRef) String() string {
	switch {
	case r == nil:
		return "<nil>"
	case r.Kind == KindPointer:
		return "*" + r.Elem.String()
	case r.Kind == KindSlice:
		return "[]" + r.Elem.String()
	case r.PkgPath != "":
		name := r.PkgPath[strings.LastIndex(r.PkgPath, "/")+1:] + "." + r.Name
		if len(r.Args) > 0 {
			args := make([]string, len(r.Args))
			for i, a := range r.Args {
				args[i] = a.String()
			}
			name += "[" + strings.Join(args, ", ") + "]"
		}
		return name
	default:
		return r.Name
	}
}

// refConverter translates go/types values into TypeRefs. Defined types are
// memoized so self-referential structs terminate.
type refConverter struct {
	seen map[types.Type]*TypeRef
}

func newRefConverter() *refConverter {
	return &refConverter{seen: make(map[types.Type]*TypeRef)}
}

func (c *refConverter) ref(t types.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if r, ok := c.seen[t]; ok {
		return r
	}
	switch t := t.(type) {
	case *types.Basic:
		return &TypeRef{Kind: KindBasic, Name: t.Name()}
	case *types.Pointer:
		return &TypeRef{Kind: KindPointer, Elem: c.ref(t.Elem())}
	case *types.Slice:
		return &TypeRef{Kind: KindSlice, Elem: c.ref(t.Elem())}
	case *types.Named:
		return c.named(t)
	case *types.Alias:
		return c.ref(types.Unalias(t))
	default:
		// Maps, channels and the rest have no classification; hand back an
		// opaque named-like ref so the classifier can report them.
		return &TypeRef{Kind: KindNamed, Name: t.String()}
	}
}

func (c *refConverter) named(t *types.Named) *TypeRef {
	obj := t.Obj()
	r := &TypeRef{Kind: KindNamed, Name: obj.Name()}
	if obj.Pkg() != nil {
		r.PkgPath = obj.Pkg().Path()
	}
	c.seen[t] = r
	if args := t.TypeArgs(); args != nil {
		for i := 0; i < args.Len(); i++ {
			r.Args = append(r.Args, c.ref(args.At(i)))
		}
	}
	switch u := t.Underlying().(type) {
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			f := u.Field(i)
			r.Fields = append(r.Fields, &FieldRef{
				Name:     f.Name(),
				Embedded: f.Embedded(),
				Exported: f.Exported(),
				Type:     c.ref(f.Type()),
			})
		}
	case *types.Basic:
		r.Under = &TypeRef{Kind: KindBasic, Name: u.Name()}
	}
	return r
}
