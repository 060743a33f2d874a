package formkit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/formkit/i18n"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code string, kv ...any) Issue
}

// Root returns the empty path "/".
func Root() PathRef { return &pathRef{} }

type pathRef struct {
	parts []string
}

func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return &pathRef{parts: append(append([]string{}, p.parts...), esc)}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Issue builds an Issue at p. kv pairs become Params and are also handed to
// the translator, so "field" and "value" show up in the message.
func (p *pathRef) Issue(code string, kv ...any) Issue {
	params := map[string]any{}
	data := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		params[k] = kv[i+1]
		data[k] = fmt.Sprint(kv[i+1])
	}
	it := Issue{Path: p.Pointer(), Code: code, Message: i18n.T(code, data), Params: params}
	if f, ok := params["field"].(string); ok {
		it.Field = f
	}
	return it
}
