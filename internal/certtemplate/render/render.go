// Package render fills certificate templates.
//
// Supported markers, all around a recognized key:
//
//	{{key}}            substitution (HTML-escaped, missing value -> "")
//	{{#key}}...{{/key}}  section, rendered when key is truthy
//	{{^key}}...{{/key}}  inverted section, rendered when key is falsy
//
// Anything else, including markers around unknown keys and unbalanced
// section markers, is copied through verbatim.
package render

import (
	"html"
	"strings"
)

// Substitution keys.
const (
	KeyLogoURL             = "logo_url"
	KeyReferenceNumber     = "reference_number"
	KeyCertificateType     = "certificate_type"
	KeyFullName            = "full_name"
	KeyAddress             = "address"
	KeyAge                 = "age"
	KeyCivilStatus         = "civil_status"
	KeyPurpose             = "purpose"
	KeyProfilePhotoURL     = "profile_photo_url"
	KeyIncludeProfilePhoto = "include_profile_photo"
)

// SubstitutionKeys is the closed set of {{key}} placeholders.
var SubstitutionKeys = []string{
	KeyLogoURL, KeyReferenceNumber, KeyCertificateType, KeyFullName, KeyAddress,
	KeyAge, KeyCivilStatus, KeyPurpose, KeyProfilePhotoURL,
}

var (
	substitutable = toSet(SubstitutionKeys)
	sectionable   = toSet(append([]string{KeyIncludeProfilePhoto}, SubstitutionKeys...))
)

func toSet(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// Values is the merged template + request context.
type Values map[string]string

func (v Values) truthy(key string) bool {
	s := strings.TrimSpace(v[key])
	return s != "" && s != "false"
}

type tokenKind int

const (
	tokText tokenKind = iota
	tokVar
	tokOpen
	tokInverted
	tokClose
)

type token struct {
	kind tokenKind
	key  string
	raw  string
}

// tokenize splits src into literal text and recognized markers.
func tokenize(src string) []token {
	var toks []token
	for len(src) > 0 {
		start := strings.Index(src, "{{")
		if start < 0 {
			toks = append(toks, token{kind: tokText, raw: src})
			break
		}
		end := strings.Index(src[start+2:], "}}")
		if end < 0 {
			toks = append(toks, token{kind: tokText, raw: src})
			break
		}
		if start > 0 {
			toks = append(toks, token{kind: tokText, raw: src[:start]})
		}
		raw := src[start : start+2+end+2]
		toks = append(toks, classify(raw, strings.TrimSpace(src[start+2:start+2+end])))
		src = src[start+2+end+2:]
	}
	return toks
}

func classify(raw, inner string) token {
	kind := tokVar
	if inner != "" {
		switch inner[0] {
		case '#':
			kind = tokOpen
		case '^':
			kind = tokInverted
		case '/':
			kind = tokClose
		}
	}
	key := inner
	if kind != tokVar {
		key = strings.TrimSpace(inner[1:])
	}
	switch {
	case kind == tokVar && substitutable[key]:
		return token{kind: tokVar, key: key, raw: raw}
	case kind != tokVar && sectionable[key]:
		return token{kind: kind, key: key, raw: raw}
	}
	return token{kind: tokText, raw: raw}
}

type node struct {
	tok      token
	inverted bool
	section  bool
	children []node
}

type frame struct {
	open     token
	children []node
}

// parse builds the section tree. A close marker that does not match the innermost
// open section stays literal; sections still open at the end are flattened back.
func parse(toks []token) []node {
	stack := []frame{{}}
	for _, t := range toks {
		top := &stack[len(stack)-1]
		switch t.kind {
		case tokOpen, tokInverted:
			stack = append(stack, frame{open: t})
		case tokClose:
			if len(stack) > 1 && top.open.key == t.key {
				n := node{tok: top.open, section: true, inverted: top.open.kind == tokInverted, children: top.children}
				stack = stack[:len(stack)-1]
				parent := &stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else {
				top.children = append(top.children, node{tok: token{kind: tokText, raw: t.raw}})
			}
		default:
			top.children = append(top.children, node{tok: t})
		}
	}
	for len(stack) > 1 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := &stack[len(stack)-1]
		parent.children = append(parent.children, node{tok: token{kind: tokText, raw: f.open.raw}})
		parent.children = append(parent.children, f.children...)
	}
	return stack[0].children
}

func write(b *strings.Builder, nodes []node, v Values) {
	for _, n := range nodes {
		switch {
		case n.section:
			if v.truthy(n.tok.key) != n.inverted {
				write(b, n.children, v)
			}
		case n.tok.kind == tokVar:
			b.WriteString(html.EscapeString(v[n.tok.key]))
		default:
			b.WriteString(n.tok.raw)
		}
	}
}

// Render fills src with v.
func Render(src string, v Values) string {
	var b strings.Builder
	b.Grow(len(src))
	write(&b, parse(tokenize(src)), v)
	return b.String()
}
