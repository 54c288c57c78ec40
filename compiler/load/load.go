// Package load extracts annotated query interfaces from compiled Go
// packages and normalizes them into pure data for the synthesis engine.
package load

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Import paths of the marker surface and the runtime library generated code
// depends on.
const (
	MarkerPkgPath  = "github.com/syssam/sqlproc"
	RuntimePkgPath = "github.com/syssam/sqlproc/runtime"
)

// Interface is one annotated query interface: the enclosing type of a group
// of generation targets.
type Interface struct {
	Name     string
	PkgPath  string
	PkgName  string
	Dir      string // directory the generated unit is written to
	ImplName string // carrier struct name (impl= override or <Name>Impl)
	OutName  string // output unit name override (name= option)
	Carrier  *TypeRef
	Methods  []*Method
}

// Method is one annotated declaration, normalized.
type Method struct {
	Name     string
	Exported bool
	Query    bool   // raw-command form: text supplied by a Raw parameter
	Proc     string // procedure name for the proc form
	HasCtx   bool   // leading context.Context parameter, never bound
	Params   []*Param
	Result   *TypeRef // nil when the method returns only error
}

// Param is one parameter in declaration order.
type Param struct {
	Name  string
	Type  *TypeRef
	Raw   bool // raw-command parameter, referenced not bound
	Out   bool
	InOut bool
}

// Load runs the package loader over the given patterns and extracts every
// annotated interface, sorted by package path and name so downstream
// grouping is deterministic.
func Load(patterns ...string) ([]*Interface, error) {
	return LoadWithFlags(nil, patterns...)
}

// LoadWithFlags is Load with custom build flags passed to the package
// loader.
func LoadWithFlags(buildFlags []string, patterns ...string) ([]*Interface, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports |
			packages.NeedDeps | packages.NeedTypes | packages.NeedSyntax |
			packages.NeedTypesInfo,
		BuildFlags: buildFlags,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("sqlproc: load packages: %w", err)
	}
	var out []*Interface
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("sqlproc: package %s: %v", pkg.PkgPath, pkg.Errors[0])
		}
		ifaces, err := FromPackage(pkg)
		if err != nil {
			return nil, err
		}
		out = append(out, ifaces...)
	}
	slices.SortFunc(out, func(a, b *Interface) int {
		if c := strings.Compare(a.PkgPath, b.PkgPath); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// FromPackage extracts the annotated interfaces of a single loaded package.
// Only file-level type declarations are considered: an annotated type nested
// inside a function is skipped without a diagnostic. An annotated type that
// is not an interface is skipped the same way.
func FromPackage(pkg *packages.Package) ([]*Interface, error) {
	conv := newRefConverter()
	var out []*Interface
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				q, ok := findDirective(directives(doc), "queries")
				if !ok {
					continue
				}
				it, ok := ts.Type.(*ast.InterfaceType)
				if !ok {
					continue
				}
				iface, err := extractInterface(pkg, conv, ts, it, q)
				if err != nil {
					return nil, err
				}
				if len(iface.Methods) > 0 {
					out = append(out, iface)
				}
			}
		}
	}
	if err := resolveRequired(pkg, out); err != nil {
		return nil, err
	}
	return out, nil
}

func extractInterface(pkg *packages.Package, conv *refConverter, ts *ast.TypeSpec, it *ast.InterfaceType, q Directive) (*Interface, error) {
	iface := &Interface{
		Name:     ts.Name.Name,
		PkgPath:  pkg.PkgPath,
		PkgName:  pkg.Name,
		Dir:      filepath.Dir(pkg.Fset.Position(ts.Pos()).Filename),
		ImplName: ts.Name.Name + "Impl",
		OutName:  q.Opts["name"],
	}
	if impl := q.Opts["impl"]; impl != "" {
		iface.ImplName = impl
	}
	if obj := pkg.Types.Scope().Lookup(iface.ImplName); obj != nil && isStruct(obj.Type()) {
		iface.Carrier = conv.ref(obj.Type())
	}
	for _, field := range it.Methods.List {
		if len(field.Names) == 0 {
			continue // embedded interface, not a declaration of its own
		}
		m, err := extractMethod(pkg, conv, iface.Name, field)
		if err != nil {
			return nil, err
		}
		if m != nil {
			iface.Methods = append(iface.Methods, m)
		}
	}
	return iface, nil
}

func extractMethod(pkg *packages.Package, conv *refConverter, ifaceName string, field *ast.Field) (*Method, error) {
	ds := directives(field.Doc)
	proc, hasProc := findDirective(ds, "proc")
	query, hasQuery := findDirective(ds, "query")
	if !hasProc && !hasQuery {
		return nil, nil
	}
	name := field.Names[0].Name
	if hasProc && hasQuery {
		return nil, NewExtractError(ifaceName, name, "both proc and query directives present", nil)
	}
	d := proc
	if hasQuery {
		d = query
	}
	m := &Method{
		Name:     name,
		Exported: ast.IsExported(name),
		Query:    hasQuery,
		Proc:     proc.Arg,
	}
	if hasProc && m.Proc == "" {
		return nil, NewExtractError(ifaceName, name, "proc directive requires a procedure name", nil)
	}
	obj, ok := pkg.TypesInfo.Defs[field.Names[0]].(*types.Func)
	if !ok {
		return nil, NewExtractError(ifaceName, name, "method symbol not resolvable", nil)
	}
	sig := obj.Type().(*types.Signature)
	if err := extractResults(conv, ifaceName, m, sig.Results()); err != nil {
		return nil, err
	}
	if err := extractParams(conv, ifaceName, m, sig.Params()); err != nil {
		return nil, err
	}
	if err := applyDirections(ifaceName, m, d); err != nil {
		return nil, err
	}
	if m.Query && countRaw(m.Params) != 1 {
		return nil, fmt.Errorf("%w: %s.%s: query form requires exactly one sqlproc.Raw parameter",
			ErrMarkerUnresolved, ifaceName, name)
	}
	if !m.Query && countRaw(m.Params) != 0 {
		return nil, NewExtractError(ifaceName, name, "sqlproc.Raw parameter is only valid on the query form", nil)
	}
	return m, nil
}

func extractResults(conv *refConverter, ifaceName string, m *Method, results *types.Tuple) error {
	if results.Len() == 0 || !isErrorType(results.At(results.Len()-1).Type()) {
		return NewExtractError(ifaceName, m.Name, "last result must be error", nil)
	}
	switch results.Len() {
	case 1:
	case 2:
		m.Result = conv.ref(results.At(0).Type())
	default:
		return NewExtractError(ifaceName, m.Name, "at most one result besides error is supported", nil)
	}
	return nil
}

func extractParams(conv *refConverter, ifaceName string, m *Method, params *types.Tuple) error {
	for i := 0; i < params.Len(); i++ {
		v := params.At(i)
		if i == 0 && isContextType(v.Type()) {
			m.HasCtx = true
			continue
		}
		if v.Name() == "" {
			return NewExtractError(ifaceName, m.Name, "bound parameters must be named", nil)
		}
		r := conv.ref(v.Type())
		m.Params = append(m.Params, &Param{
			Name: v.Name(),
			Type: r,
			Raw:  r.Is(MarkerPkgPath, "Raw"),
		})
	}
	return nil
}

func applyDirections(ifaceName string, m *Method, d Directive) error {
	for _, kind := range []string{"out", "inout"} {
		for _, pname := range d.List(kind) {
			p := findParam(m.Params, pname)
			if p == nil {
				return NewExtractError(ifaceName, m.Name, fmt.Sprintf("unknown parameter %q in %s=", pname, kind), nil)
			}
			if p.Raw {
				return NewExtractError(ifaceName, m.Name, "raw-command parameter cannot carry a direction", nil)
			}
			if p.Type.Kind != KindPointer {
				return NewExtractError(ifaceName, m.Name, fmt.Sprintf("%s parameter %q must be pointer-typed", kind, pname), nil)
			}
			switch kind {
			case "out":
				p.Out = true
			case "inout":
				p.InOut = true
			}
		}
	}
	return nil
}

// resolveRequired enforces the fatal preconditions of a generation pass: the
// runtime package must be reachable from any package that declares annotated
// interfaces, since the synthesized bodies link against it.
func resolveRequired(pkg *packages.Package, ifaces []*Interface) error {
	if len(ifaces) == 0 {
		return nil
	}
	if strings.HasPrefix(pkg.PkgPath, MarkerPkgPath) {
		return nil // in-module packages resolve the runtime by construction
	}
	if !importsPath(pkg, RuntimePkgPath, make(map[string]bool)) {
		return fmt.Errorf("%w: package %s does not import %s",
			ErrRuntimeUnresolved, pkg.PkgPath, RuntimePkgPath)
	}
	return nil
}

func importsPath(pkg *packages.Package, path string, seen map[string]bool) bool {
	if seen[pkg.PkgPath] {
		return false
	}
	seen[pkg.PkgPath] = true
	for p, imp := range pkg.Imports {
		if p == path || importsPath(imp, path, seen) {
			return true
		}
	}
	return false
}

func findParam(params []*Param, name string) *Param {
	for _, p := range params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func countRaw(params []*Param) int {
	n := 0
	for _, p := range params {
		if p.Raw {
			n++
		}
	}
	return n
}

func isErrorType(t types.Type) bool {
	named, ok := t.(*types.Named)
	return ok && named.Obj().Pkg() == nil && named.Obj().Name() == "error"
}

func isContextType(t types.Type) bool {
	named, ok := t.(*types.Named)
	return ok && named.Obj().Pkg() != nil &&
		named.Obj().Pkg().Path() == "context" && named.Obj().Name() == "Context"
}

func isStruct(t types.Type) bool {
	_, ok := t.Underlying().(*types.Struct)
	return ok
}
