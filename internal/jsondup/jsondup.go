// Package jsondup finds repeated object keys in JSON text. Decoders keep the
// last value silently, so a document with a repeated "fields" or "name" key
// would lose data without a trace.
package jsondup

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// Finding is one repeated key. Path is the JSON Pointer of the key.
type Finding struct {
	Path string
	Key  string
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	key          string // current key (objects) in pointer form
	index        int    // next element index (arrays)
}

// Detect scans data and returns every repeated key, up to limit findings
// (limit <= 0 means no limit). A syntax error ends the scan and is returned
// with the findings collected so far.
func Detect(data []byte, limit int) ([]Finding, error) {
	return DetectReader(bytes.NewReader(data), limit)
}

// DetectReader is Detect over a reader. The reader is consumed.
func DetectReader(r io.Reader, limit int) ([]Finding, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var out []Finding
	var stack []frame

	// valueDone marks the end of a value inside the enclosing container.
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.kind == kindObject {
			top.expectingKey = true
		} else {
			top.index++
		}
	}
	pointer := func(leaf string) string {
		var b strings.Builder
		for _, f := range stack[:len(stack)-1] {
			b.WriteByte('/')
			if f.kind == kindObject {
				b.WriteString(f.key)
			} else {
				b.WriteString(strconv.Itoa(f.index))
			}
		}
		b.WriteByte('/')
		b.WriteString(leaf)
		return b.String()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if len(stack) > 0 {
				return out, io.ErrUnexpectedEOF
			}
			return out, nil
		}
		if err != nil {
			return out, err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, frame{kind: kindObject, keys: map[string]struct{}{}, expectingKey: true})
			case '[':
				stack = append(stack, frame{kind: kindArray})
			case '}', ']':
				stack = stack[:len(stack)-1]
				valueDone()
			}
			continue
		case string:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.kind == kindObject && top.expectingKey {
					esc := escape(v)
					top.key = esc
					top.expectingKey = false
					if _, dup := top.keys[v]; dup {
						out = append(out, Finding{Path: pointer(esc), Key: v})
						if limit > 0 && len(out) >= limit {
							return out, nil
						}
					}
					top.keys[v] = struct{}{}
					continue
				}
			}
		}
		valueDone()
	}
}

func escape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
