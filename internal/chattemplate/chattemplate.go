// Package chattemplate implements the small text-template language the
// greeting and command-reply text use: a line carries zero or more
// head-of-line conditions, then named placeholders.
//
// Conditions: `{TAG?}` keeps the line only if TAG is set to a non-empty
// value; `{TAG!}` keeps the line only if TAG is absent or empty. Several
// conditions may prefix one line; all must pass. After conditions are
// stripped, every `{TAG}` placeholder still in the line is substituted from
// Vars. An unknown placeholder (no entry in Vars) is left intact rather than
// replaced with an empty string, since the placeholder set is part of the
// external interface and callers may add new ones independently of this
// package.
package chattemplate

import (
	"regexp"
	"strings"
)

// Vars maps placeholder name to its substitution value. A missing key or an
// empty value is "falsy" for condition evaluation.
type Vars map[string]string

var conditionRE = regexp.MustCompile(`^\{(\w+)([?!])\}`)
var placeholderRE = regexp.MustCompile(`\{(\w+)\}`)

// RenderLine evaluates line's head-of-line conditions against vars, then
// substitutes placeholders. ok is false if any condition failed, in which
// case the line must not be emitted.
func RenderLine(line string, vars Vars) (rendered string, ok bool) {
	rest := line
	for {
		m := conditionRE.FindStringSubmatch(rest)
		if m == nil {
			break
		}
		tag, kind := m[1], m[2]
		truthy := vars[tag] != ""
		if kind == "?" && !truthy {
			return "", false
		}
		if kind == "!" && truthy {
			return "", false
		}
		rest = rest[len(m[0]):]
	}

	substituted := placeholderRE.ReplaceAllStringFunc(rest, func(tok string) string {
		tag := tok[1 : len(tok)-1]
		if v, present := vars[tag]; present {
			return v
		}
		return tok // unknown placeholder: left intact
	})
	return substituted, true
}

// Render evaluates every line of a multi-line template, dropping lines whose
// conditions fail, and joins the survivors with "\n".
func Render(template string, vars Vars) string {
	lines := strings.Split(template, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered, ok := RenderLine(line, vars)
		if !ok {
			continue
		}
		out = append(out, rendered)
	}
	return strings.Join(out, "\n")
}
