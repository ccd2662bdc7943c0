package reify

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// Top, bottom, star
// ---------------------------------------------------------------------------

func TestAnyAcceptsEverything(t *testing.T) {
	u := newUniverse(t)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD})

	values := []any{nil, 42, "s", u.intD, NewObject(listInt, nil), classedValue{u.number}}
	for _, v := range values {
		if !u.reg.Any().IsInstance(v) {
			t.Errorf("Any should accept %v", v)
		}
	}
}

func TestNothingValueIsInstanceOfEverything(t *testing.T) {
	u := newUniverse(t)
	nothing := NewObject(u.reg.Nothing(), nil)
	targets := []*Descriptor{
		u.intD,
		u.apply(t, u.list, []*Descriptor{u.intD}),
		u.apply(t, u.comparator, []*Descriptor{u.strD}),
		u.reg.Nothing(),
	}
	for _, d := range targets {
		if !d.IsInstance(nothing) {
			t.Errorf("%s should accept a Nothing value", d)
		}
	}
	if u.reg.Nothing().IsInstance(42) {
		t.Error("Nothing should reject plain values")
	}
	if u.reg.Nothing().IsInstance(u.intD) {
		t.Error("Nothing should reject Int")
	}
}

func TestStarProjectionMatchesAnyArgument(t *testing.T) {
	u := newUniverse(t)
	listStar := u.apply(t, u.list, []*Descriptor{u.reg.Star()})
	mlStar := u.apply(t, u.mutableList, []*Descriptor{u.reg.Star()})

	if listStar.String() != "List<*>" {
		t.Errorf("String = %q, want List<*>", listStar)
	}
	for _, arg := range []*Descriptor{u.intD, u.strD, u.reg.Any(), u.reg.Nothing()} {
		if !listStar.IsInstance(NewObject(u.apply(t, u.list, []*Descriptor{arg}), nil)) {
			t.Errorf("List<*> should accept List<%s>", arg)
		}
		if !mlStar.IsInstance(NewObject(u.apply(t, u.mutableList, []*Descriptor{arg}), nil)) {
			t.Errorf("MutableList<*> should accept MutableList<%s>", arg)
		}
	}

	mlInt := u.apply(t, u.mutableList, []*Descriptor{u.intD})
	if mlInt.IsInstance(NewObject(mlStar, nil)) {
		t.Error("MutableList<Int> should reject MutableList<*>")
	}
}

// ---------------------------------------------------------------------------
// Variance bound laws
// ---------------------------------------------------------------------------

func TestCovariantAcceptance(t *testing.T) {
	u := newUniverse(t)
	listNum := u.apply(t, u.list, []*Descriptor{u.numD}, Out)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD}, Out)

	if !listNum.IsInstance(NewObject(listInt, nil)) {
		t.Error("List<out Number> should accept List<out Int>")
	}
	if listInt.IsInstance(NewObject(listNum, nil)) {
		t.Error("List<out Int> should reject List<out Number>")
	}
	if !listInt.IsSubtypeOf(listNum) {
		t.Error("List<out Int> should be a subtype of List<out Number>")
	}
}

func TestContravariantAcceptance(t *testing.T) {
	u := newUniverse(t)
	cmpInt := u.apply(t, u.comparator, []*Descriptor{u.intD}, In)
	cmpNum := u.apply(t, u.comparator, []*Descriptor{u.numD}, In)

	if !cmpInt.IsInstance(NewObject(cmpNum, nil)) {
		t.Error("Comparator<in Int> should accept Comparator<in Number>")
	}
	if cmpNum.IsInstance(NewObject(cmpInt, nil)) {
		t.Error("Comparator<in Number> should reject Comparator<in Int>")
	}
}

func TestInvariantExactOnly(t *testing.T) {
	u := newUniverse(t)
	impostor := u.raw(t, NewClass("Int", u.number))

	mlInt := u.apply(t, u.mutableList, []*Descriptor{u.intD})
	mlNum := u.apply(t, u.mutableList, []*Descriptor{u.numD})
	mlImpostor := u.apply(t, u.mutableList, []*Descriptor{impostor})

	if !mlInt.IsInstance(NewObject(mlInt, nil)) {
		t.Error("MutableList<Int> should accept itself")
	}
	if mlInt.IsInstance(NewObject(mlNum, nil)) {
		t.Error("MutableList<Int> should reject MutableList<Number>")
	}
	if mlNum.IsInstance(NewObject(mlInt, nil)) {
		t.Error("MutableList<Number> should reject MutableList<Int>")
	}
	if mlImpostor == mlInt {
		t.Fatal("same-named classes must not canonicalize together")
	}
	if mlInt.IsInstance(NewObject(mlImpostor, nil)) {
		t.Error("MutableList<Int> should reject a same-named but distinct Int")
	}
}

func TestMixedProjections(t *testing.T) {
	u := newUniverse(t)
	mlOutNum := u.apply(t, u.mutableList, []*Descriptor{u.numD}, Out)
	mlInNum := u.apply(t, u.mutableList, []*Descriptor{u.numD}, In)
	mlInt := u.apply(t, u.mutableList, []*Descriptor{u.intD})
	mlBi := u.apply(t, u.mutableList, []*Descriptor{u.strD}, Bivariant)

	if !mlOutNum.IsInstance(NewObject(mlInt, nil)) {
		t.Error("MutableList<out Number> should accept MutableList<Int>")
	}
	if mlInNum.IsInstance(NewObject(mlInt, nil)) {
		t.Error("MutableList<in Number> should reject MutableList<Int>")
	}
	if mlInt.IsInstance(NewObject(mlOutNum, nil)) {
		t.Error("MutableList<Int> should reject MutableList<out Number>")
	}
	if !mlBi.IsInstance(NewObject(mlInt, nil)) || !mlBi.IsInstance(NewObject(mlInNum, nil)) {
		t.Error("a bivariant projection should accept any argument")
	}
}

func TestNestedArguments(t *testing.T) {
	u := newUniverse(t)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD})
	listNum := u.apply(t, u.list, []*Descriptor{u.numD})
	listListInt := u.apply(t, u.list, []*Descriptor{listInt})
	listListNum := u.apply(t, u.list, []*Descriptor{listNum})

	if !listListNum.IsInstance(NewObject(listListInt, nil)) {
		t.Error("List<List<Number>> should accept List<List<Int>>")
	}
	if listListInt.IsInstance(NewObject(listListNum, nil)) {
		t.Error("List<List<Int>> should reject List<List<Number>>")
	}
}

// ---------------------------------------------------------------------------
// Parent chains
// ---------------------------------------------------------------------------

func TestParentChainWalk(t *testing.T) {
	u := newUniverse(t)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD})
	mlInt, _, _ := u.reg.Register(u.mutableList, []*Descriptor{u.intD}, nil, listInt)
	alInt, _, _ := u.reg.Register(u.arrayList, []*Descriptor{u.intD}, nil, mlInt)
	value := NewObject(alInt, nil)

	listNum := u.apply(t, u.list, []*Descriptor{u.numD})
	mlNum := u.apply(t, u.mutableList, []*Descriptor{u.numD})
	listStr := u.apply(t, u.list, []*Descriptor{u.strD})

	if !listNum.IsInstance(value) {
		t.Error("List<out Number> should accept an ArrayList<Int>")
	}
	if !mlInt.IsInstance(value) {
		t.Error("MutableList<Int> should accept an ArrayList<Int>")
	}
	if mlNum.IsInstance(value) {
		t.Error("MutableList<Number> should reject an ArrayList<Int>")
	}
	if listStr.IsInstance(value) {
		t.Error("List<String> should reject an ArrayList<Int>")
	}
	cmp := u.apply(t, u.comparator, []*Descriptor{u.intD})
	if cmp.IsInstance(value) {
		t.Error("no common ancestor should fail")
	}
}

func TestCyclicParentTerminates(t *testing.T) {
	u := newUniverse(t)
	comparable := NewGenericClass("Comparable", []TypeParam{{Name: "T", Variance: In}})
	foo := NewClass("Foo")

	fooD, inserted, err := u.reg.Register(foo, nil, nil, nil)
	if err != nil || !inserted {
		t.Fatalf("Register Foo = %v, %v", inserted, err)
	}
	cmpFoo := u.apply(t, comparable, []*Descriptor{fooD})
	if err := u.reg.SetParent(fooD, cmpFoo); err != nil {
		t.Fatalf("SetParent: %v", err)
	}

	if !cmpFoo.IsInstance(NewObject(fooD, nil)) {
		t.Error("Comparable<in Foo> should accept a Foo")
	}
	if !fooD.IsInstance(NewObject(fooD, nil)) {
		t.Error("Foo should accept itself")
	}
	cmpInt := u.apply(t, comparable, []*Descriptor{u.intD})
	if cmpInt.IsInstance(NewObject(fooD, nil)) {
		t.Error("Comparable<in Int> should reject a Foo")
	}
}

// ---------------------------------------------------------------------------
// Raw and plain values
// ---------------------------------------------------------------------------

func TestRawRejectedByParametricTarget(t *testing.T) {
	u := newUniverse(t)
	rawList := u.raw(t, u.list)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD})
	mlInt, _, _ := u.reg.Register(u.mutableList, []*Descriptor{u.intD}, nil, listInt)

	if listInt.IsInstance(NewObject(rawList, nil)) {
		t.Error("List<Int> should reject a raw List")
	}
	if listInt.IsInstance(rawList) {
		t.Error("List<Int> should reject the raw List descriptor")
	}
	if !rawList.IsInstance(NewObject(listInt, nil)) {
		t.Error("raw List should accept any List instantiation")
	}
	if !rawList.IsInstance(NewObject(mlInt, nil)) {
		t.Error("raw List should accept a MutableList<Int> through its parent")
	}
	if !u.reg.MustRegister(u.list, nil, nil, nil).IsInstance(NewObject(rawList, nil)) {
		t.Error("raw List should accept a raw List value")
	}
}

func TestPlainValueFallback(t *testing.T) {
	u := newUniverse(t)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD})

	if !u.intD.IsInstance(42) {
		t.Error("Int should accept 42")
	}
	if u.intD.IsInstance("42") {
		t.Error("Int should reject a string")
	}
	if !u.numD.IsInstance(classedValue{u.intC}) {
		t.Error("Number should accept a value classed as Int")
	}
	if listInt.IsInstance([]int{1, 2}) {
		t.Error("a plain value can never satisfy a parametric target")
	}
	if u.intD.IsInstance(nil) {
		t.Error("nil is not an Int")
	}
}

func TestNilObjectIsNotAnInstance(t *testing.T) {
	u := newUniverse(t)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD})

	var obj *Object
	if obj.Descriptor() != nil {
		t.Error("nil Object should carry no descriptor")
	}
	if listInt.IsInstance(obj) {
		t.Error("List<Int> should reject a nil *Object")
	}
	if _, ok := listInt.SafeCast(obj); ok {
		t.Error("SafeCast of a nil *Object should fail")
	}
	if u.intD.IsInstance(obj) {
		t.Error("Int should reject a nil *Object")
	}
}

func TestRawNominalBeyondReifiedChain(t *testing.T) {
	u := newUniverse(t)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD})
	anyList := u.raw(t, u.list)

	// MutableList<Int> with no reified parent recorded still nominally
	// extends List.
	mlInt := u.apply(t, u.mutableList, []*Descriptor{u.intD})
	if !anyList.IsInstance(NewObject(mlInt, nil)) {
		t.Error("raw List should accept MutableList<Int> nominally")
	}
	if listInt.IsInstance(NewObject(mlInt, nil)) {
		t.Error("List<Int> needs a reified parent to accept MutableList<Int>")
	}
}

// ---------------------------------------------------------------------------
// Reflexivity and cast agreement
// ---------------------------------------------------------------------------

func TestReflexivity(t *testing.T) {
	u := newUniverse(t)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD})
	mlInt, _, _ := u.reg.Register(u.mutableList, []*Descriptor{u.intD}, nil, listInt)
	u.apply(t, u.comparator, []*Descriptor{u.reg.Star()})
	u.apply(t, u.mutableList, []*Descriptor{mlInt}, Bivariant)

	for _, d := range u.reg.All() {
		if !d.IsInstance(NewObject(d, nil)) {
			t.Errorf("%s should accept a value of itself", d)
		}
		if !d.IsInstance(d) {
			t.Errorf("%s should accept itself as a descriptor value", d)
		}
	}
}

func TestCastAgreement(t *testing.T) {
	u := newUniverse(t)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD})
	listNum := u.apply(t, u.list, []*Descriptor{u.numD})
	cmpInt := u.apply(t, u.comparator, []*Descriptor{u.intD})

	targets := []*Descriptor{u.intD, u.numD, listInt, listNum, cmpInt, u.reg.Any(), u.reg.Nothing()}
	values := []any{
		42, "s", nil,
		NewObject(listInt, nil), NewObject(listNum, nil), NewObject(cmpInt, nil),
		classedValue{u.intC}, NewObject(u.reg.Nothing(), nil),
	}
	for _, d := range targets {
		for _, v := range values {
			is := d.IsInstance(v)

			got, ok := d.SafeCast(v)
			if ok != is {
				t.Errorf("%s.SafeCast(%v) ok = %v, IsInstance = %v", d, v, ok, is)
			}
			if ok && got != v {
				t.Errorf("%s.SafeCast(%v) returned a different value", d, v)
			}

			_, err := d.Cast(v)
			if (err == nil) != is {
				t.Errorf("%s.Cast(%v) err = %v, IsInstance = %v", d, v, err, is)
			}
		}
	}
}

func TestCastError(t *testing.T) {
	u := newUniverse(t)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD})
	listStr := u.apply(t, u.list, []*Descriptor{u.strD})

	_, err := listInt.Cast(NewObject(listStr, nil))
	var ce *CastError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *CastError", err)
	}
	if ce.Target != listInt {
		t.Error("CastError should record the target")
	}
	want := "reify: cannot cast List<out String> to List<out Int>"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCastAs(t *testing.T) {
	u := newUniverse(t)
	listInt := u.apply(t, u.list, []*Descriptor{u.intD})
	obj := NewObject(listInt, []int{1})

	got, err := CastAs[*Object](listInt, obj)
	if err != nil || got != obj {
		t.Errorf("CastAs = %v, %v", got, err)
	}
	if _, err := CastAs[string](listInt, obj); err == nil {
		t.Error("CastAs to the wrong Go type should fail")
	}
	n, err := CastAs[int](u.intD, 7)
	if err != nil || n != 7 {
		t.Errorf("CastAs[int] = %d, %v", n, err)
	}
}

func TestIdentical(t *testing.T) {
	a := newUniverse(t)
	listInt := a.apply(t, a.list, []*Descriptor{a.intD})

	other := NewRegistry()
	intD := other.MustRegister(a.intC, nil, nil, nil)
	listInt2 := other.MustRegister(a.list, []*Descriptor{intD}, nil, nil)
	listIntInv := other.MustRegister(a.list, []*Descriptor{intD}, []Variance{Invariant}, nil)

	if !listInt.Identical(listInt2) {
		t.Error("same instantiation in two registries should be identical")
	}
	if listInt.Identical(listIntInv) {
		t.Error("different projections are not identical")
	}
	if !a.reg.Star().Identical(other.Star()) {
		t.Error("star projections are identical")
	}

	listStar := a.apply(t, a.list, []*Descriptor{a.reg.Star()})
	nested := a.apply(t, a.list, []*Descriptor{listStar})
	nestedInt := a.apply(t, a.list, []*Descriptor{listInt})
	pairs := []struct {
		name string
		x, y *Descriptor
	}{
		{"star vs concrete", listStar, listInt},
		{"concrete vs star", listInt, listStar},
		{"nested star vs concrete", nested, nestedInt},
		{"nested concrete vs star", nestedInt, nested},
	}
	for _, p := range pairs {
		if p.x.Identical(p.y) {
			t.Errorf("%s: %s should not be identical to %s", p.name, p.x, p.y)
		}
	}
	if !listStar.Identical(other.MustRegister(a.list, []*Descriptor{other.Star()}, nil, nil)) {
		t.Error("List<*> should be identical across registries")
	}
}

func TestIllegalVariancePanics(t *testing.T) {
	u := newUniverse(t)
	defer func() {
		r := recover()
		if _, ok := r.(*IllegalVarianceError); !ok {
			t.Errorf("recovered %v, want *IllegalVarianceError", r)
		}
	}()
	bounds(u.intD, Variance(7))
}
