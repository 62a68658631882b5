// Package typeinfo is the serializer's reflective facade: the only place that
// reads reflect.Type / reflect.Value to decide what a value is called and
// whether it should be treated as callable. Concentrating that here keeps the
// rest of the serializer free of ad-hoc reflect.Kind switches, mirroring the
// role get_kind/get_constructor_kind played in the original dynamically typed
// host.
package typeinfo

import (
	"reflect"
	"runtime"
	"strings"
)

// UniverseModule is the sentinel module name for built-in, unqualified types
// (the Go analogue of Python's "builtins").
const UniverseModule = "builtin"

// TypeInfo is a (module, kind) pair identifying a type or pseudo-type.
type TypeInfo struct {
	Module string
	Kind   string
}

// FullName is Module.Kind, with Module == "" meaning no prefix.
func (t TypeInfo) FullName() string {
	if t.Module == "" {
		return t.Kind
	}
	return t.Module + "." + t.Kind
}

// QualName is FullName, except the prefix is suppressed when Module is empty
// or the universe module.
func (t TypeInfo) QualName() string {
	if t.Module == "" || t.Module == UniverseModule {
		return t.Kind
	}
	return t.Module + "." + t.Kind
}

func (t TypeInfo) String() string {
	return t.QualName()
}

// ParseTypeInfo splits a dotted string on the last dot; a dotless string
// becomes TypeInfo{"", s}.
func ParseTypeInfo(s string) TypeInfo {
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return TypeInfo{Module: "", Kind: s}
	}
	return TypeInfo{Module: s[:idx], Kind: s[idx+1:]}
}

// reflectTypeType is the reflect.Type of reflect.Type itself, used to detect
// "v holds a type" the way Python's isinstance(v, type) does.
var reflectTypeType = reflect.TypeOf((*reflect.Type)(nil)).Elem()

// GetKind returns the TypeInfo used to tag v for serialization purposes. In
// the original dynamically typed host every object is already reference
// semantics, so pointers carry no separate type identity; a single level of
// Go pointer indirection is unwrapped here for the same reason (identity /
// cycle tracking is handled separately, by address, not by this name).
func GetKind(v reflect.Value) TypeInfo {
	if !v.IsValid() {
		return TypeInfo{Module: "reflect", Kind: "Invalid"}
	}
	if v.Type().Implements(reflectTypeType) {
		if t, ok := v.Interface().(reflect.Type); ok {
			return typeOfType(t)
		}
	}
	if v.Kind() == reflect.Func {
		return TypeInfo{Module: "typing", Kind: "Callable"}
	}
	if v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}
	return typeOfValue(v.Type())
}

// GetConstructorKind is like GetKind, except a func value is tagged by its
// own runtime-qualified name rather than the generic "typing.Callable". Used
// only when recording a reducer's constructor.
func GetConstructorKind(v reflect.Value) TypeInfo {
	if !v.IsValid() {
		return TypeInfo{Module: "reflect", Kind: "Invalid"}
	}
	if t, ok := v.Interface().(reflect.Type); ok {
		return typeOfType(t)
	}
	if v.Kind() == reflect.Func {
		name := runtime.FuncForPC(v.Pointer()).Name()
		idx := strings.LastIndex(name, "/")
		if idx >= 0 {
			name = name[idx+1:]
		}
		return ParseTypeInfo(name)
	}
	return typeOfValue(v.Type())
}

func typeOfType(t reflect.Type) TypeInfo {
	if t.PkgPath() == "" {
		return TypeInfo{Module: UniverseModule, Kind: t.Name()}
	}
	return TypeInfo{Module: t.PkgPath(), Kind: t.Name()}
}

func typeOfValue(t reflect.Type) TypeInfo {
	name := t.Name()
	if name == "" {
		// Unnamed (composite) types: fall back to the full Go syntax, e.g.
		// "[]int" or "map[string]int", same spirit as the teacher's
		// formatTypeNoColors for anonymous types.
		name = t.String()
	}
	if t.PkgPath() == "" {
		return TypeInfo{Module: UniverseModule, Kind: name}
	}
	return TypeInfo{Module: t.PkgPath(), Kind: name}
}

// IsCallable reports whether v's kind is Func — the Go analogue of Python's
// callable(), simplified because Go has no arbitrary "callable object"
// protocol beyond function values and method values.
func IsCallable(v reflect.Value) bool {
	return v.IsValid() && v.Kind() == reflect.Func
}
