package env

import (
	"slices"

	goenv "go-simpler.org/env"
)

// Source supplies raw environment values.
type Source = goenv.Source

// Map is a fixed set of raw values, typically used in tests.
type Map = goenv.Map

// OS reads the process environment.
func OS() Source {
	return goenv.OS
}

// nonEmpty reports empty values as unset so defaults apply to them.
type nonEmpty struct {
	Source
}

func (s nonEmpty) LookupEnv(key string) (string, bool) {
	v, ok := s.Source.LookupEnv(key)
	if v == "" {
		return "", false
	}
	return v, ok
}

// layered consults each source in order and returns the first hit.
type layered []Source

func (l layered) LookupEnv(key string) (string, bool) {
	for _, s := range l {
		if v, ok := s.LookupEnv(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// restricted hides every name outside names.
type restricted struct {
	src   Source
	names []string
}

func (r restricted) LookupEnv(key string) (string, bool) {
	if !slices.Contains(r.names, key) {
		return "", false
	}
	return r.src.LookupEnv(key)
}

// only restricts src to the enumerated names.
func only(src Source, names []string) Source {
	return restricted{src: src, names: names}
}
