// Package coverage statically reports exported named types that would
// deterministically hit NoProviderError at dump time: types that implement
// neither the reducer protocol nor a repr-eligible primitive kind, and are
// not themselves a slice/array/map. It is grounded on the teacher's
// who/introspect packages, which already load packages with
// golang.org/x/tools/go/packages and inspect interface satisfaction with
// go/types — repurposed here from "who implements this interface" to "who
// would fail to serialize".
package coverage

import (
	"fmt"
	"go/types"
	"sort"

	"golang.org/x/tools/go/packages"
)

// TypeReport names one type that FindUnserializableTypes flagged.
type TypeReport struct {
	PkgPath string
	Name    string
	Reason  string
}

func (r TypeReport) String() string {
	return fmt.Sprintf("%s.%s: %s", r.PkgPath, r.Name, r.Reason)
}

// reducerMethodName is the Reducer interface's single method, checked by
// name/signature rather than by importing internal/serializer, so this
// package stays usable against arbitrary module trees, including ones that
// vendor their own Reducer-shaped type.
const reducerMethodName = "Reduce"

// FindUnserializableTypes loads pkgPattern (e.g. "./..." or a specific
// import path) and reports every exported named type that:
//   - is not a slice, array, or map (those always go through the
//     list/dict providers), and
//   - does not implement a method named Reduce (the reducer provider), and
//   - does not reduce to one of the always-repr-eligible primitive kinds.
//
// Each such type would hit NoProviderError the first time the harness tried
// to dump a live value of it.
func FindUnserializableTypes(pkgPattern string) ([]TypeReport, error) {
	cfg := &packages.Config{
		Mode: packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps | packages.NeedSyntax | packages.NeedName,
	}
	pkgs, err := packages.Load(cfg, pkgPattern)
	if err != nil {
		return nil, fmt.Errorf("coverage: failed to load packages: %w", err)
	}

	var reports []TypeReport
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			continue
		}
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj := scope.Lookup(name)
			if obj == nil || !obj.Exported() {
				continue
			}
			typeName, ok := obj.(*types.TypeName)
			if !ok {
				continue
			}
			named, ok := typeName.Type().(*types.Named)
			if !ok {
				continue
			}
			if reason, unserializable := checkCoverage(named); unserializable {
				reports = append(reports, TypeReport{
					PkgPath: pkg.PkgPath,
					Name:    obj.Name(),
					Reason:  reason,
				})
			}
		}
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].PkgPath != reports[j].PkgPath {
			return reports[i].PkgPath < reports[j].PkgPath
		}
		return reports[i].Name < reports[j].Name
	})
	return reports, nil
}

// checkCoverage mirrors the provider chain's eligibility checks (§4.2),
// without actually constructing a value: list/dict-like underlying types
// and reducer-capable types are covered; everything else must reduce to a
// repr-eligible primitive kind, or it is flagged.
func checkCoverage(named *types.Named) (reason string, unserializable bool) {
	if _, isInterface := named.Underlying().(*types.Interface); isInterface {
		return "", false // interfaces have no fixed layout to flag
	}
	switch named.Underlying().(type) {
	case *types.Slice, *types.Array, *types.Map:
		return "", false
	}

	if implementsReduce(named) || implementsReduce(types.NewPointer(named)) {
		return "", false
	}

	if isReprEligible(named.Underlying()) {
		return "", false
	}

	return "implements neither the reducer protocol nor a repr-eligible primitive kind, and is not a slice/array/map", true
}

func implementsReduce(t types.Type) bool {
	ms := types.NewMethodSet(t)
	for i := 0; i < ms.Len(); i++ {
		fn := ms.At(i).Obj()
		if fn.Name() != reducerMethodName {
			continue
		}
		sig, ok := fn.Type().(*types.Signature)
		if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
			continue
		}
		return true
	}
	return false
}

func isReprEligible(t types.Type) bool {
	basic, ok := t.(*types.Basic)
	if !ok {
		return false
	}
	switch basic.Info() & (types.IsBoolean | types.IsInteger | types.IsFloat | types.IsComplex | types.IsString) {
	case 0:
		return false
	default:
		return true
	}
}
