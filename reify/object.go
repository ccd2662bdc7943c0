package reify

// Parametric is implemented by values that carry their own reified
// descriptor.
type Parametric interface {
	Descriptor() *Descriptor
}

// Object pairs arbitrary data with the descriptor of its runtime type.
type Object struct {
	Desc *Descriptor
	Data any
}

// NewObject creates an Object carrying d.
func NewObject(d *Descriptor, data any) *Object {
	return &Object{Desc: d, Data: data}
}

// Descriptor returns the carried descriptor, or nil for a nil Object.
func (o *Object) Descriptor() *Descriptor {
	if o == nil {
		return nil
	}
	return o.Desc
}

func (o *Object) String() string {
	if o == nil {
		return "<nil object>"
	}
	return "a " + o.Desc.String()
}

func descriptorOf(v any) *Descriptor {
	switch x := v.(type) {
	case *Descriptor:
		return x
	case Parametric:
		return x.Descriptor()
	}
	return nil
}
