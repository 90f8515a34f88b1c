package vm

// VTable holds the methods one class (or one immediate kind) defines
// itself.
//
// Methods are stored in an array indexed by selector ID, so a local lookup
// is a bounds check and an index. Inheritance is not stored here: the
// dispatcher walks superclass references through the ObjectTable and asks
// each class's vtable in turn.
type VTable struct {
	owner   string
	methods []Method
}

// NewVTable creates an empty vtable. owner names the class or kind it
// belongs to and is only used in diagnostics.
func NewVTable(owner string) *VTable {
	return &VTable{
		owner:   owner,
		methods: make([]Method, 0, 32),
	}
}

// Owner returns the name given to NewVTable.
func (vt *VTable) Owner() string {
	return vt.owner
}

// Lookup finds a method by selector ID in this vtable only. Returns nil if
// none is defined.
func (vt *VTable) Lookup(selector int) Method {
	if vt == nil {
		return nil
	}
	if selector >= 0 && selector < len(vt.methods) {
		return vt.methods[selector]
	}
	return nil
}

// AddMethod adds or replaces a method at the given selector ID.
// The methods array is grown as needed.
func (vt *VTable) AddMethod(selector int, method Method) {
	if selector >= len(vt.methods) {
		grown := make([]Method, selector+1)
		copy(grown, vt.methods)
		vt.methods = grown
	}
	vt.methods[selector] = method
}

// HasMethod returns true if this vtable defines a method for selector.
func (vt *VTable) HasMethod(selector int) bool {
	return vt.Lookup(selector) != nil
}

// LocalMethods returns all non-nil methods keyed by selector ID.
func (vt *VTable) LocalMethods() map[int]Method {
	result := make(map[int]Method)
	for i, m := range vt.methods {
		if m != nil {
			result[i] = m
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Registration helpers
// ---------------------------------------------------------------------------

// Define registers method under name, interning the selector.
func (vt *VTable) Define(selectors *SelectorTable, name string, method Method) {
	vt.AddMethod(selectors.Intern(name), method)
}

// Define0 registers a zero-argument primitive.
func (vt *VTable) Define0(selectors *SelectorTable, name string, fn Method0Func) {
	vt.Define(selectors, name, NewMethod0(name, fn))
}

// Define1 registers a one-argument primitive.
func (vt *VTable) Define1(selectors *SelectorTable, name string, fn Method1Func) {
	vt.Define(selectors, name, NewMethod1(name, fn))
}

// Define2 registers a two-argument primitive.
func (vt *VTable) Define2(selectors *SelectorTable, name string, fn Method2Func) {
	vt.Define(selectors, name, NewMethod2(name, fn))
}
