package registry

import (
	"regexp"
	"strings"
)

// Template is a compiled level-1 RFC 6570 subset: only bare {var}
// expansions, no operators, no composite values. Spec §4.4.1 explicitly
// allows "match by prefix or by template library"; this is the template-
// library option, kept deliberately small.
type Template struct {
	raw   string
	re    *regexp.Regexp
	names []string
}

var templateVarRe = regexp.MustCompile(`\{([^{}]+)\}`)

// CompileTemplate parses a URI template containing zero or more {var}
// placeholders into a matcher.
func CompileTemplate(tmpl string) *Template {
	var names []string
	var b strings.Builder
	b.WriteString("^")

	last := 0
	for _, loc := range templateVarRe.FindAllStringSubmatchIndex(tmpl, -1) {
		start, end := loc[0], loc[1]
		name := tmpl[loc[2]:loc[3]]
		b.WriteString(regexp.QuoteMeta(tmpl[last:start]))
		b.WriteString("([^/]+)")
		names = append(names, name)
		last = end
	}
	b.WriteString(regexp.QuoteMeta(tmpl[last:]))
	b.WriteString("$")

	return &Template{raw: tmpl, re: regexp.MustCompile(b.String()), names: names}
}

// Match reports whether uri satisfies the template, returning the bound
// variables on success.
func (t *Template) Match(uri string) (map[string]string, bool) {
	m := t.re.FindStringSubmatch(uri)
	if m == nil {
		return nil, false
	}
	vars := make(map[string]string, len(t.names))
	for i, name := range t.names {
		vars[name] = m[i+1]
	}
	return vars, true
}
