package resolve

import (
	"reflect"
	"strings"
	"sync"
)

type lookupKey struct {
	t    reflect.Type
	name string
}

// fieldCache maps lookupKey to the matched field index ([]int, nil if none).
var fieldCache sync.Map

// methodCache maps lookupKey to the matched method index (int, -1 if none).
var methodCache sync.Map

// lookupField returns the index sequence of the struct field matching name.
func lookupField(t reflect.Type, name string) []int {
	k := lookupKey{t: t, name: name}
	if v, ok := fieldCache.Load(k); ok {
		return v.([]int)
	}
	idx := matchField(t, name)
	fieldCache.Store(k, idx)
	return idx
}

func matchField(t reflect.Type, name string) []int {
	if name == "" {
		return nil
	}
	visible := reflect.VisibleFields(t)
	candidates := visible[:0:0]
	for _, f := range visible {
		if f.IsExported() {
			candidates = append(candidates, f)
		}
	}

	for _, tag := range []string{"serializer", "json"} {
		for _, f := range candidates {
			if tagName(f.Tag.Get(tag)) == name {
				return f.Index
			}
		}
	}
	for _, f := range candidates {
		if f.Name == name {
			return f.Index
		}
	}
	folded := fold(name)
	for _, f := range candidates {
		if fold(f.Name) == folded {
			return f.Index
		}
	}
	return nil
}

// lookupMethod returns the index of the method of t matching name, or -1.
func lookupMethod(t reflect.Type, name string) int {
	k := lookupKey{t: t, name: name}
	if v, ok := methodCache.Load(k); ok {
		return v.(int)
	}
	idx := -1
	if m, ok := t.MethodByName(name); ok {
		idx = m.Index
	} else {
		folded := fold(name)
		for i := 0; i < t.NumMethod(); i++ {
			if fold(t.Method(i).Name) == folded {
				idx = i
				break
			}
		}
	}
	methodCache.Store(k, idx)
	return idx
}

func tagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func fold(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
