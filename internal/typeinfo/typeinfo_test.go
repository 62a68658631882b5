package typeinfo

import (
	"reflect"
	"testing"
)

func TestParseTypeInfo(t *testing.T) {
	tests := []struct {
		in   string
		want TypeInfo
	}{
		{"builtin.int", TypeInfo{"builtin", "int"}},
		{"int", TypeInfo{"", "int"}},
		{"net/http.Handler", TypeInfo{"net/http", "Handler"}},
	}
	for _, tt := range tests {
		if got := ParseTypeInfo(tt.in); got != tt.want {
			t.Errorf("ParseTypeInfo(%q) = %+v; want %+v", tt.in, got, tt.want)
		}
	}
}

func TestQualNameSuppressesUniverseModule(t *testing.T) {
	ti := TypeInfo{Module: UniverseModule, Kind: "int"}
	if got := ti.QualName(); got != "int" {
		t.Errorf("QualName() = %q; want %q", got, "int")
	}
	if got := ti.FullName(); got != "builtin.int" {
		t.Errorf("FullName() = %q; want %q", got, "builtin.int")
	}
}

func TestGetKindInvalid(t *testing.T) {
	got := GetKind(reflect.Value{})
	want := TypeInfo{"reflect", "Invalid"}
	if got != want {
		t.Errorf("GetKind(invalid) = %+v; want %+v", got, want)
	}
}

func TestGetKindPrimitive(t *testing.T) {
	got := GetKind(reflect.ValueOf(42))
	if got.Kind != "int" || got.Module != UniverseModule {
		t.Errorf("GetKind(42) = %+v; want module=%q kind=int", got, UniverseModule)
	}
}

func TestGetKindFunc(t *testing.T) {
	f := func() {}
	got := GetKind(reflect.ValueOf(f))
	want := TypeInfo{"typing", "Callable"}
	if got != want {
		t.Errorf("GetKind(func) = %+v; want %+v", got, want)
	}
}

func TestGetConstructorKindFunc(t *testing.T) {
	got := GetConstructorKind(reflect.ValueOf(TestGetConstructorKindFunc))
	if got.Kind == "Callable" {
		t.Errorf("GetConstructorKind(func) should not collapse to Callable, got %+v", got)
	}
}

func TestGetKindNamedStruct(t *testing.T) {
	type point struct{ X, Y int }
	p := point{1, 2}
	got := GetKind(reflect.ValueOf(p))
	if got.Kind != "point" {
		t.Errorf("GetKind(point{}) kind = %q; want %q", got.Kind, "point")
	}
}

func TestIsCallable(t *testing.T) {
	if !IsCallable(reflect.ValueOf(func() {})) {
		t.Error("IsCallable(func) = false; want true")
	}
	if IsCallable(reflect.ValueOf(42)) {
		t.Error("IsCallable(42) = true; want false")
	}
}
