package resourcepack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ParseProperties parses a variant key like "facing=east,half=lower".
// The empty key and the legacy "normal" key have no properties.
func ParseProperties(s string) map[string]string {
	props := map[string]string{}
	if s == "" || s == "normal" {
		return props
	}
	for _, part := range strings.Split(s, ",") {
		equiv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(equiv) != 2 || equiv[0] == "" {
			continue
		}
		props[equiv[0]] = equiv[1]
	}
	return props
}

// FormatProperties is the inverse of ParseProperties, with keys sorted.
func FormatProperties(props map[string]string) string {
	keys := lo.Keys(props)
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + props[k]
	}
	return strings.Join(parts, ",")
}

// variantScore reports whether a variant key is consistent with props, and
// how many of its properties were explicitly matched. Properties absent
// from props act as wildcards.
func variantScore(key string, props map[string]string) (int, bool) {
	score := 0
	for k, v := range ParseProperties(key) {
		want, ok := props[k]
		if !ok {
			continue
		}
		if want != v {
			return 0, false
		}
		score++
	}
	return score, true
}

func whenValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}

func clauseMatches(clause map[string]any, props map[string]string) bool {
	for attr, value := range clause {
		switch attr {
		case "OR", "AND":
			nested := &BlockStateWhenClause{IsOr: attr == "OR"}
			list, _ := value.([]any)
			for _, item := range list {
				if m, ok := item.(map[string]any); ok {
					nested.Clauses = append(nested.Clauses, m)
				}
			}
			if !nested.Matches(props) {
				return false
			}
			continue
		}
		have, ok := props[attr]
		if !ok {
			return false
		}
		if !lo.Contains(strings.Split(whenValue(value), "|"), have) {
			return false
		}
	}
	return true
}

// Matches reports whether the clause selects the given properties.
// A property the clause tests but props does not set never matches.
func (c *BlockStateWhenClause) Matches(props map[string]string) bool {
	if c.IsOr {
		return lo.SomeBy(c.Clauses, func(cl map[string]any) bool {
			return clauseMatches(cl, props)
		})
	}
	return lo.EveryBy(c.Clauses, func(cl map[string]any) bool {
		return clauseMatches(cl, props)
	})
}

// Resolve selects the models for a set of state properties. Variant states
// resolve to the single best matching variant (the most explicitly matched
// properties, ties broken by key order); multipart states resolve to every
// applicable part, in file order. Weighted alternatives use the first entry.
func (st *BlockState) Resolve(props map[string]string) []ModelSpec {
	if len(st.Variants) > 0 {
		keys := lo.Keys(st.Variants)
		sort.Strings(keys)
		best, bestScore := "", -1
		for _, k := range keys {
			score, ok := variantScore(k, props)
			if ok && score > bestScore && len(st.Variants[k]) > 0 {
				best, bestScore = k, score
			}
		}
		if bestScore < 0 {
			return nil
		}
		return []ModelSpec{st.Variants[best][0]}
	}

	var out []ModelSpec
	for _, part := range st.Multipart {
		if len(part.Apply) == 0 {
			continue
		}
		if part.When == nil || part.When.Matches(props) {
			out = append(out, part.Apply[0])
		}
	}
	return out
}

// Properties lists every property value mentioned by the blockstate,
// sorted, keyed by property name.
func (st *BlockState) Properties() map[string][]string {
	attrs := map[string][]string{}
	add := func(attr, val string) {
		if !lo.Contains(attrs[attr], val) {
			attrs[attr] = append(attrs[attr], val)
		}
	}

	for pred := range st.Variants {
		for k, v := range ParseProperties(pred) {
			add(k, v)
		}
	}

	var walk func(clause map[string]any)
	walk = func(clause map[string]any) {
		for attr, value := range clause {
			if attr == "OR" || attr == "AND" {
				list, _ := value.([]any)
				for _, item := range list {
					if m, ok := item.(map[string]any); ok {
						walk(m)
					}
				}
				continue
			}
			for _, v := range strings.Split(whenValue(value), "|") {
				add(attr, v)
			}
		}
	}
	for _, part := range st.Multipart {
		if part.When != nil {
			for _, conj := range part.When.Clauses {
				walk(conj)
			}
		}
	}

	for name, values := range attrs {
		if len(values) == 1 && values[0] == "true" {
			values = append(values, "false")
		}
		sort.Strings(values)
		attrs[name] = values
	}
	return attrs
}
