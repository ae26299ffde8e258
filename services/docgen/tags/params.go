// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tags

import "strings"

// ParamInfo is the structured form of a @param/@return/@type tag value.
type ParamInfo struct {
	// Types lists the type names from the `{a|b}` group, without braces.
	Types []string

	// Name is the parameter name, empty for @return/@type values.
	Name string

	// Optional is true for `[name]` and `name = default` forms.
	Optional bool

	// Default is the default value text from `[name = value]`, if any.
	Default string

	// Spread is true for `...name` rest parameters.
	Spread bool

	// Description is the free text after the name, with a leading `-`
	// separator removed.
	Description string
}

// ParseParamValue parses a `{type} name - description` tag value.
//
// Description:
//
//	Handles the common JSDoc parameter forms:
//
//	  {string} name - desc
//	  {string|number} [name] - optional
//	  {number} [name=10] - optional with default
//	  {...string} rest - spread
//	  {Object} - bare type (for @return/@type)
//
//	Unparseable values degrade to a single `*` type with the whole value as
//	description rather than failing; documentation input is never trusted
//	to be well-formed.
func ParseParamValue(value string) ParamInfo {
	info := ParamInfo{}
	rest := strings.TrimSpace(value)

	if strings.HasPrefix(rest, "{") {
		if end := matchBrace(rest); end > 0 {
			typeText := rest[1:end]
			rest = strings.TrimSpace(rest[end+1:])
			if strings.HasPrefix(typeText, "...") {
				info.Spread = true
				typeText = strings.TrimPrefix(typeText, "...")
			}
			for _, t := range strings.Split(typeText, "|") {
				t = strings.TrimSpace(t)
				if t != "" {
					info.Types = append(info.Types, t)
				}
			}
		}
	}
	if len(info.Types) == 0 {
		info.Types = []string{"*"}
		info.Description = strings.TrimSpace(strings.TrimPrefix(rest, "-"))
		return info
	}

	// Name token, possibly bracketed for optional params.
	if rest != "" && rest[0] != '-' {
		nameToken := rest
		if idx := strings.IndexAny(rest, " \t\n"); idx >= 0 {
			nameToken = rest[:idx]
			rest = strings.TrimSpace(rest[idx+1:])
		} else {
			rest = ""
		}

		if strings.HasPrefix(nameToken, "[") && strings.HasSuffix(nameToken, "]") {
			info.Optional = true
			nameToken = strings.TrimSuffix(strings.TrimPrefix(nameToken, "["), "]")
			if eq := strings.Index(nameToken, "="); eq >= 0 {
				info.Default = strings.TrimSpace(nameToken[eq+1:])
				nameToken = strings.TrimSpace(nameToken[:eq])
			}
		}
		if strings.HasPrefix(nameToken, "...") {
			info.Spread = true
			nameToken = strings.TrimPrefix(nameToken, "...")
		}
		info.Name = nameToken
	}

	info.Description = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "-"))
	return info
}

// matchBrace returns the index of the `}` closing the `{` at position 0,
// or -1 when unbalanced. Nested braces (record types) are respected.
func matchBrace(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
