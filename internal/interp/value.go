package interp

import (
	"strconv"
	"strings"

	"github.com/cwbudde/rox/internal/ast"
)

// Value is the tagged union of every runtime value a Rox program can
// produce. All concrete value types are pointers so identity comparisons
// (used for shared-mutable containers) are meaningful.
type Value interface {
	Type() string
	String() string
}

// NumberValue is Rox's sole numeric type: an IEEE-754 double.
type NumberValue struct {
	Value float64
}

func (n *NumberValue) Type() string { return "Number" }
func (n *NumberValue) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// StringValue is an immutable Rox string.
type StringValue struct {
	Value string
}

func (s *StringValue) Type() string   { return "String" }
func (s *StringValue) String() string { return s.Value }

// BooleanValue is `true` or `false`.
type BooleanValue struct {
	Value bool
}

func (b *BooleanValue) Type() string { return "Boolean" }
func (b *BooleanValue) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// NilValue is the singleton `nil` literal's value.
type NilValue struct{}

func (n *NilValue) Type() string   { return "Nil" }
func (n *NilValue) String() string { return "nil" }

// NoneValue marks the absence of a value in contexts where nil itself
// would be ambiguous (e.g. a dict lookup miss is nil; None is reserved
// for internal plumbing that needs to distinguish "no value at all").
type NoneValue struct{}

func (n *NoneValue) Type() string   { return "None" }
func (n *NoneValue) String() string { return "none" }

var (
	theNil   = &NilValue{}
	theTrue  = &BooleanValue{Value: true}
	theFalse = &BooleanValue{Value: false}
)

func boolValue(b bool) *BooleanValue {
	if b {
		return theTrue
	}
	return theFalse
}

// ListValue is a shared-mutable ordered sequence.
type ListValue struct {
	Elements []Value
}

func (l *ListValue) Type() string { return "List" }
func (l *ListValue) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = displayElement(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TupleValue is an immutable ordered sequence.
type TupleValue struct {
	Elements []Value
}

func (t *TupleValue) Type() string { return "Tuple" }
func (t *TupleValue) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = displayElement(e)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// DictValue is a shared-mutable string-keyed map. Keys are the string
// coercion of whatever value indexed the dict, per spec.
type DictValue struct {
	Entries map[string]Value
	// Order preserves insertion order for deterministic display/keys().
	Order []string
}

func NewDictValue() *DictValue {
	return &DictValue{Entries: make(map[string]Value)}
}

func (d *DictValue) Type() string { return "Dict" }
func (d *DictValue) String() string {
	parts := make([]string, 0, len(d.Order))
	for _, k := range d.Order {
		parts = append(parts, k+": "+displayElement(d.Entries[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Set inserts or overwrites key, tracking insertion order.
func (d *DictValue) Set(key string, value Value) {
	if _, exists := d.Entries[key]; !exists {
		d.Order = append(d.Order, key)
	}
	d.Entries[key] = value
}

// Remove deletes key, reporting whether it was present.
func (d *DictValue) Remove(key string) bool {
	if _, ok := d.Entries[key]; !ok {
		return false
	}
	delete(d.Entries, key)
	for i, k := range d.Order {
		if k == key {
			d.Order = append(d.Order[:i], d.Order[i+1:]...)
			break
		}
	}
	return true
}

// displayElement quotes strings nested inside a collection the way a
// source-level string literal would read, matching how printed
// collections disambiguate element types.
func displayElement(v Value) string {
	if s, ok := v.(*StringValue); ok {
		return strconv.Quote(s.Value)
	}
	return v.String()
}

// FunctionValue is a user-defined function or method: parameter names,
// body, and the environment captured at declaration time (its closure).
type FunctionValue struct {
	Name          string
	Parameters    []string
	Body          []ast.Statement
	Closure       *Environment
	IsInitializer bool
}

func (f *FunctionValue) Type() string   { return "Function" }
func (f *FunctionValue) String() string { return "<fn " + displayName(f.Name) + ">" }

func displayName(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}

// Bind returns a new function value whose closure is a fresh one-entry
// environment binding `this` to instance, parented on the method's
// original closure. The resolver has already accounted for this extra
// hop when computing depths inside the method body.
func (f *FunctionValue) Bind(instance *InstanceValue) *FunctionValue {
	env := NewEnvironment(f.Closure)
	env.Define("this", instance)
	return &FunctionValue{
		Name:          f.Name,
		Parameters:    f.Parameters,
		Body:          f.Body,
		Closure:       env,
		IsInitializer: f.IsInitializer,
	}
}

// NativeFunction is a host-implemented global or module function.
type NativeFunction struct {
	Name  string
	Arity int // -1 means variadic/any arity
	Fn    func(i *Interpreter, args []Value) (Value, *RuntimeError)
}

func (n *NativeFunction) Type() string   { return "NativeFunction" }
func (n *NativeFunction) String() string { return "<native fn " + n.Name + ">" }

// BoundNativeMethod is a native method resolved against a specific
// receiver, e.g. `list.push`: calling it prepends the receiver to the
// argument list and dispatches like a NativeFunction.
type BoundNativeMethod struct {
	Receiver Value
	Method   *NativeFunction
}

func (b *BoundNativeMethod) Type() string   { return "BoundNativeMethod" }
func (b *BoundNativeMethod) String() string { return "<native fn " + b.Method.Name + ">" }

// ModuleValue represents an imported source file: its export table and
// whether its body has finished executing. Per the module-loader
// handshake (§4.7), a module handle is published into the cache with
// Initialised=false before its body runs, so two modules that import
// each other both observe a handle rather than recursing forever.
type ModuleValue struct {
	Path        string
	Exports     map[string]Value
	Initialised bool
}

func (m *ModuleValue) Type() string   { return "Module" }
func (m *ModuleValue) String() string { return "<module '" + m.Path + "'>" }

// IsTruthy implements Rox's truthiness rule: nil and false are falsy;
// zero and the empty string are falsy; everything else (including
// tuples/lists/dicts, which are always truthy) is truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case *NilValue, *NoneValue:
		return false
	case *BooleanValue:
		return val.Value
	case *NumberValue:
		return val.Value != 0
	case *StringValue:
		return val.Value != ""
	default:
		return true
	}
}

// ValuesEqual implements Rox's `==`: structural equality for scalars,
// tuples, and dicts (chosen over reference identity for determinism, see
// DESIGN.md's Open Question resolution); lists compare elementwise too.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case *NilValue:
		_, ok := b.(*NilValue)
		return ok
	case *NoneValue:
		_, ok := b.(*NoneValue)
		return ok
	case *BooleanValue:
		bv, ok := b.(*BooleanValue)
		return ok && av.Value == bv.Value
	case *NumberValue:
		bv, ok := b.(*NumberValue)
		return ok && av.Value == bv.Value
	case *StringValue:
		bv, ok := b.(*StringValue)
		return ok && av.Value == bv.Value
	case *ListValue:
		bv, ok := b.(*ListValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !ValuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *TupleValue:
		bv, ok := b.(*TupleValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !ValuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *DictValue:
		bv, ok := b.(*DictValue)
		if !ok || len(av.Entries) != len(bv.Entries) {
			return false
		}
		for k, v := range av.Entries {
			ov, ok := bv.Entries[k]
			if !ok || !ValuesEqual(v, ov) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// StringKeyOf stringifies v for use as a dict key, per spec.md §4.4
// ("dicts accept any value, stringified for the key").
func StringKeyOf(v Value) string {
	if s, ok := v.(*StringValue); ok {
		return s.Value
	}
	return v.String()
}
