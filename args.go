// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memo

import "maps"

// Args are the arguments of one call to a memoized function.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// Positional returns Args holding only positional arguments.
func Positional(v ...any) Args {
	return Args{Positional: v}
}

// Keywords returns Args holding only keyword arguments.
func Keywords(kw map[string]any) Args {
	return Args{Keyword: kw}
}

// With returns a copy of a with the keyword argument name set to v.
func (a Args) With(name string, v any) Args {
	kw := make(map[string]any, len(a.Keyword)+1)
	maps.Copy(kw, a.Keyword)
	kw[name] = v
	return Args{Positional: a.Positional, Keyword: kw}
}
