package reify

import "testing"

// universe is a small class hierarchy shared by the tests:
//
//	Number <- Int        String
//	List<out E>          MutableList<E>      Comparator<in T>
//	ArrayList<E> : MutableList<E>
type universe struct {
	reg *Registry

	number, intC, str             *Class
	list, mutableList, comparator *Class
	arrayList                     *Class

	numD, intD, strD *Descriptor
}

func newUniverse(t *testing.T) *universe {
	t.Helper()
	u := &universe{reg: NewRegistry()}

	u.number = NewClass("Number")
	u.intC = NewClass("Int", u.number)
	u.intC.Predicate = func(v any) bool { _, ok := v.(int); return ok }
	u.str = NewClass("String")
	u.str.Predicate = func(v any) bool { _, ok := v.(string); return ok }

	u.list = NewGenericClass("List", []TypeParam{{Name: "E", Variance: Out}})
	u.mutableList = NewGenericClass("MutableList", []TypeParam{{Name: "E"}}, u.list)
	u.comparator = NewGenericClass("Comparator", []TypeParam{{Name: "T", Variance: In}})
	u.arrayList = NewGenericClass("ArrayList", []TypeParam{{Name: "E"}}, u.mutableList)

	u.numD = u.raw(t, u.number)
	u.intD = u.raw(t, u.intC)
	u.strD = u.raw(t, u.str)
	return u
}

func (u *universe) raw(t *testing.T, c *Class) *Descriptor {
	t.Helper()
	return u.reg.MustRegister(c, nil, nil, nil)
}

func (u *universe) apply(t *testing.T, c *Class, args []*Descriptor, variance ...Variance) *Descriptor {
	t.Helper()
	d, _, err := u.reg.Register(c, args, variance, nil)
	if err != nil {
		t.Fatalf("Register(%s): %v", c.Name, err)
	}
	return d
}

// classedValue is a plain value that only knows its nominal class.
type classedValue struct {
	class *Class
}

func (v classedValue) ReifyClass() *Class { return v.class }
