// Package gqltext gives the raw-query editor a light syntax-aware view of
// GraphQL document text: operations, their variables and top-level response
// keys, and fragment definitions. It is a scanner, not a validating parser;
// malformed input yields a partial outline rather than an error.
package gqltext

// Operation types.
const (
	TypeQuery        = "query"
	TypeMutation     = "mutation"
	TypeSubscription = "subscription"
)

// Operation describes one operation definition in a document.
type Operation struct {
	Type      string   `json:"type"`               // query, mutation, or subscription
	Name      string   `json:"name,omitempty"`     // empty for anonymous operations
	Variables []string `json:"variables,omitzero"` // declared variable names, without '$'
	Fields    []string `json:"fields,omitzero"`    // top-level response keys (alias wins)
}

// Fragment describes a named fragment definition.
type Fragment struct {
	Name   string   `json:"name"`
	OnType string   `json:"on_type"`
	Fields []string `json:"fields,omitzero"`
}

// Outline is the scanned structure of a document.
type Outline struct {
	Operations []Operation `json:"operations,omitzero"`
	Fragments  []Fragment  `json:"fragments,omitzero"`
	Balanced   bool        `json:"balanced"` // braces matched
	Empty      bool        `json:"empty"`    // no tokens at all
}

// Primary returns the first operation of the document.
func (o Outline) Primary() (Operation, bool) {
	if len(o.Operations) == 0 {
		return Operation{}, false
	}
	return o.Operations[0], true
}

// Operation returns the operation with the given name.
func (o Outline) Operation(name string) (Operation, bool) {
	for _, op := range o.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Scan outlines a GraphQL document.
func Scan(doc string) Outline {
	toks, balanced := lex(doc)
	out := Outline{Balanced: balanced, Empty: len(toks) == 0}

	p := 0
	for p < len(toks) {
		t := toks[p]
		switch {
		case t.kind == tokPunct && t.text == "{":
			fields, next := selectionKeys(toks, p)
			out.Operations = append(out.Operations, Operation{Type: TypeQuery, Fields: fields})
			p = next

		case t.kind == tokName && isOperationType(t.text):
			op := Operation{Type: t.text}
			p++
			if p < len(toks) && toks[p].kind == tokName {
				op.Name = toks[p].text
				p++
			}
			if p < len(toks) && isPunct(toks[p], "(") {
				op.Variables, p = variableNames(toks, p)
			}
			p = skipDirectives(toks, p)
			if p < len(toks) && isPunct(toks[p], "{") {
				op.Fields, p = selectionKeys(toks, p)
			}
			out.Operations = append(out.Operations, op)

		case t.kind == tokName && t.text == "fragment":
			p++
			var frag Fragment
			if p < len(toks) && toks[p].kind == tokName {
				frag.Name = toks[p].text
				p++
			}
			if p+1 < len(toks) && toks[p].text == "on" && toks[p+1].kind == tokName {
				frag.OnType = toks[p+1].text
				p += 2
			}
			p = skipDirectives(toks, p)
			if p < len(toks) && isPunct(toks[p], "{") {
				frag.Fields, p = selectionKeys(toks, p)
			}
			if frag.Name != "" {
				out.Fragments = append(out.Fragments, frag)
			}

		default:
			p++
		}
	}
	return out
}

// selectionKeys reads the selection set opening at toks[p] and returns the
// response keys at its first level plus the index after the closing brace.
func selectionKeys(toks []token, p int) ([]string, int) {
	var keys []string
	seen := make(map[string]bool)
	depth, parens := 0, 0

	for p < len(toks) {
		t := toks[p]
		switch {
		case t.kind == tokPunct && t.text == "(":
			parens++
		case t.kind == tokPunct && t.text == ")":
			if parens > 0 {
				parens--
			}
		case parens > 0:
			// arguments: values are not selections
		case t.kind == tokPunct && t.text == "{":
			depth++
		case t.kind == tokPunct && t.text == "}":
			depth--
			if depth == 0 {
				return keys, p + 1
			}
		case t.kind == tokSpread:
			// "... on Type" or "...Name"
			if p+2 < len(toks) && toks[p+1].text == "on" && toks[p+2].kind == tokName {
				p += 3
				continue
			}
			if p+1 < len(toks) && toks[p+1].kind == tokName {
				p += 2
				continue
			}
		case t.kind == tokPunct && t.text == "@":
			p += 2
			continue
		case t.kind == tokName && depth == 1:
			key := t.text
			if p+2 < len(toks) && isPunct(toks[p+1], ":") && toks[p+2].kind == tokName {
				p += 2 // alias: field
			}
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
		p++
	}
	return keys, p
}

// variableNames reads a "(...)" variable definition list at toks[p].
func variableNames(toks []token, p int) ([]string, int) {
	var names []string
	depth := 0
	for p < len(toks) {
		t := toks[p]
		if t.kind == tokPunct {
			switch t.text {
			case "(":
				depth++
			case ")":
				depth--
				if depth == 0 {
					return names, p + 1
				}
			case "$":
				// only declarations at the top of the list, not default values
				if depth == 1 && p+1 < len(toks) && toks[p+1].kind == tokName && p > 0 && !isPunct(toks[p-1], ":") {
					names = append(names, toks[p+1].text)
				}
			}
		}
		p++
	}
	return names, p
}

// skipDirectives skips "@name(args)" sequences at toks[p].
func skipDirectives(toks []token, p int) int {
	for p+1 < len(toks) && isPunct(toks[p], "@") && toks[p+1].kind == tokName {
		p += 2
		if p < len(toks) && isPunct(toks[p], "(") {
			depth := 0
			for p < len(toks) {
				if isPunct(toks[p], "(") {
					depth++
				} else if isPunct(toks[p], ")") {
					depth--
					if depth == 0 {
						p++
						break
					}
				}
				p++
			}
		}
	}
	return p
}

func isPunct(t token, s string) bool {
	return t.kind == tokPunct && t.text == s
}

func isOperationType(s string) bool {
	return s == TypeQuery || s == TypeMutation || s == TypeSubscription
}
