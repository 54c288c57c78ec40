package load

import (
	"go/ast"
	"strings"
)

// Directive is one parsed //sqlproc: comment line.
//
// Grammar:
//
//	//sqlproc:queries [impl=Name] [name=output_name]
//	//sqlproc:proc <procedureName> [out=p1,p2] [inout=p3]
//	//sqlproc:query [out=p1,p2] [inout=p3]
//
// The first bare token after the verb is the positional argument; every
// key=value token becomes an option.
type Directive struct {
	Verb string
	Arg  string
	Opts map[string]string
}

const directivePrefix = "//sqlproc:"

// List returns the comma-separated values of the named option.
func (d Directive) List(key string) []string {
	v, ok := d.Opts[key]
	if !ok || v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func parseDirective(line string) (Directive, bool) {
	if !strings.HasPrefix(line, directivePrefix) {
		return Directive{}, false
	}
	rest := strings.TrimPrefix(line, directivePrefix)
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Directive{}, false
	}
	d := Directive{Verb: fields[0], Opts: make(map[string]string)}
	for _, f := range fields[1:] {
		if k, v, ok := strings.Cut(f, "="); ok {
			d.Opts[k] = v
			continue
		}
		if d.Arg == "" {
			d.Arg = f
		}
	}
	return d, true
}

// directives extracts every sqlproc directive from a comment group.
func directives(doc *ast.CommentGroup) []Directive {
	if doc == nil {
		return nil
	}
	var out []Directive
	for _, c := range doc.List {
		if d, ok := parseDirective(c.Text); ok {
			out = append(out, d)
		}
	}
	return out
}

// findDirective returns the first directive with the given verb.
func findDirective(ds []Directive, verb string) (Directive, bool) {
	for _, d := range ds {
		if d.Verb == verb {
			return d, true
		}
	}
	return Directive{}, false
}
