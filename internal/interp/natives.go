package interp

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/rox/internal/lexer"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// zeroPos stands in for "no source position" on errors raised from
// native code, which runs outside the parsed/resolved AST.
var zeroPos = lexer.Position{}

// installNatives populates env with the native globals spec.md §6 lists:
// clock, input, import, and the fs/math modules. Called once per
// top-level program and once per freshly loaded module (spec.md §4.7
// step 6: "a fresh environment for the module ... with native globals
// ... installed").
func (i *Interpreter) installNatives(env *Environment) {
	env.Define("clock", &NativeFunction{Name: "clock", Arity: 0, Fn: nativeClock})
	env.Define("input", &NativeFunction{Name: "input", Arity: 1, Fn: nativeInput})
	env.Define("import", &NativeFunction{Name: "import", Arity: 1, Fn: nativeImport})
	env.Define("fs", fsModule())
	env.Define("math", mathModule())
}

func nativeClock(_ *Interpreter, _ []Value) (Value, *RuntimeError) {
	return &NumberValue{Value: float64(time.Now().UnixNano()) / 1e9}, nil
}

func nativeInput(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	prompt, ok := args[0].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "input() expects a string prompt")
	}
	fmt.Fprint(os.Stdout, prompt.Value)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return theNil, nil
	}
	return &StringValue{Value: strings.TrimRight(line, "\r\n")}, nil
}

func nativeImport(i *Interpreter, args []Value) (Value, *RuntimeError) {
	path, ok := args[0].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "import() expects a string path")
	}
	mod, err := i.Import(path.Value)
	if err != nil {
		return nil, err
	}
	return mod, nil
}

// ---------------------------------------------------------------------
// fs module
// ---------------------------------------------------------------------

func fsModule() *ModuleValue {
	exports := map[string]Value{
		"readFile":  &NativeFunction{Name: "fs.readFile", Arity: 1, Fn: fsReadFile},
		"writeFile": &NativeFunction{Name: "fs.writeFile", Arity: 2, Fn: fsWriteFile},
		"exists":    &NativeFunction{Name: "fs.exists", Arity: 1, Fn: fsExists},
		"readJSON":  &NativeFunction{Name: "fs.readJSON", Arity: 2, Fn: fsReadJSON},
		"writeJSON": &NativeFunction{Name: "fs.writeJSON", Arity: 3, Fn: fsWriteJSON},
	}
	return &ModuleValue{Path: "fs", Exports: exports, Initialised: true}
}

func fsReadFile(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	path, ok := args[0].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "fs.readFile() expects a string path")
	}
	data, err := os.ReadFile(path.Value)
	if err != nil {
		return nil, newRuntimeError(zeroPos, "fs.readFile: %v", err)
	}
	return &StringValue{Value: string(data)}, nil
}

func fsWriteFile(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	path, ok := args[0].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "fs.writeFile() expects a string path")
	}
	content, ok := args[1].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "fs.writeFile() expects string content")
	}
	if err := os.WriteFile(path.Value, []byte(content.Value), 0o644); err != nil {
		return nil, newRuntimeError(zeroPos, "fs.writeFile: %v", err)
	}
	return theNil, nil
}

func fsExists(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	path, ok := args[0].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "fs.exists() expects a string path")
	}
	_, err := os.Stat(path.Value)
	return boolValue(err == nil), nil
}

// fsReadJSON reads the file at path and extracts the value at the given
// gjson path expression, converting it to a Rox value.
func fsReadJSON(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	path, ok := args[0].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "fs.readJSON() expects a string path")
	}
	query, ok := args[1].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "fs.readJSON() expects a string query")
	}
	data, err := os.ReadFile(path.Value)
	if err != nil {
		return nil, newRuntimeError(zeroPos, "fs.readJSON: %v", err)
	}
	result := gjson.GetBytes(data, query.Value)
	if !result.Exists() {
		return theNil, nil
	}
	return jsonResultToValue(result), nil
}

// fsWriteJSON reads the file at path (or starts from "{}" if absent),
// sets the given gjson path to value, and writes the result back.
func fsWriteJSON(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	path, ok := args[0].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "fs.writeJSON() expects a string path")
	}
	query, ok := args[1].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "fs.writeJSON() expects a string query")
	}

	existing, err := os.ReadFile(path.Value)
	if err != nil {
		existing = []byte("{}")
	}

	updated, err := sjson.SetBytes(existing, query.Value, valueToJSON(args[2]))
	if err != nil {
		return nil, newRuntimeError(zeroPos, "fs.writeJSON: %v", err)
	}
	if err := os.WriteFile(path.Value, updated, 0o644); err != nil {
		return nil, newRuntimeError(zeroPos, "fs.writeJSON: %v", err)
	}
	return theNil, nil
}

// jsonResultToValue converts a gjson.Result into the nearest Rox value.
func jsonResultToValue(r gjson.Result) Value {
	switch r.Type {
	case gjson.True, gjson.False:
		return boolValue(r.Bool())
	case gjson.Number:
		return &NumberValue{Value: r.Num}
	case gjson.String:
		return &StringValue{Value: r.Str}
	case gjson.Null:
		return theNil
	case gjson.JSON:
		if r.IsArray() {
			var elems []Value
			r.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, jsonResultToValue(v))
				return true
			})
			return &ListValue{Elements: elems}
		}
		dict := NewDictValue()
		r.ForEach(func(k, v gjson.Result) bool {
			dict.Set(k.String(), jsonResultToValue(v))
			return true
		})
		return dict
	default:
		return theNil
	}
}

// valueToJSON converts a Rox value into something sjson.SetBytes can
// marshal directly (plain Go scalars, slices, and maps).
func valueToJSON(v Value) any {
	switch val := v.(type) {
	case *NumberValue:
		return val.Value
	case *StringValue:
		return val.Value
	case *BooleanValue:
		return val.Value
	case *NilValue, *NoneValue:
		return nil
	case *ListValue:
		out := make([]any, len(val.Elements))
		for i, e := range val.Elements {
			out[i] = valueToJSON(e)
		}
		return out
	case *DictValue:
		out := make(map[string]any, len(val.Order))
		for _, k := range val.Order {
			out[k] = valueToJSON(val.Entries[k])
		}
		return out
	default:
		return val.String()
	}
}

// ---------------------------------------------------------------------
// math module
// ---------------------------------------------------------------------

func mathModule() *ModuleValue {
	exports := map[string]Value{
		"PI": &NumberValue{Value: math.Pi},
		"E":  &NumberValue{Value: math.E},

		"random":    &NativeFunction{Name: "math.random", Arity: 0, Fn: mathUnaryNoArg(rand.Float64)},
		"abs":       &NativeFunction{Name: "math.abs", Arity: 1, Fn: mathUnary(math.Abs)},
		"ceil":      &NativeFunction{Name: "math.ceil", Arity: 1, Fn: mathUnary(math.Ceil)},
		"floor":     &NativeFunction{Name: "math.floor", Arity: 1, Fn: mathUnary(math.Floor)},
		"round":     &NativeFunction{Name: "math.round", Arity: 1, Fn: mathUnary(math.Round)},
		"sqrt":      &NativeFunction{Name: "math.sqrt", Arity: 1, Fn: mathUnary(math.Sqrt)},
		"sin":       &NativeFunction{Name: "math.sin", Arity: 1, Fn: mathUnary(math.Sin)},
		"cos":       &NativeFunction{Name: "math.cos", Arity: 1, Fn: mathUnary(math.Cos)},
		"tan":       &NativeFunction{Name: "math.tan", Arity: 1, Fn: mathUnary(math.Tan)},
		"log":       &NativeFunction{Name: "math.log", Arity: 1, Fn: mathUnary(math.Log)},
		"log10":     &NativeFunction{Name: "math.log10", Arity: 1, Fn: mathUnary(math.Log10)},
		"exp":       &NativeFunction{Name: "math.exp", Arity: 1, Fn: mathUnary(math.Exp)},
		"pow":       &NativeFunction{Name: "math.pow", Arity: 2, Fn: mathBinary(math.Pow)},
		"min":       &NativeFunction{Name: "math.min", Arity: 2, Fn: mathBinary(math.Min)},
		"max":       &NativeFunction{Name: "math.max", Arity: 2, Fn: mathBinary(math.Max)},
		"rand_int":  &NativeFunction{Name: "math.rand_int", Arity: 1, Fn: mathRandInt},
		"rand_range": &NativeFunction{Name: "math.rand_range", Arity: 2, Fn: mathRandRange},
		"is_int":    &NativeFunction{Name: "math.is_int", Arity: 1, Fn: mathIsInt},
		"to_int":    &NativeFunction{Name: "math.to_int", Arity: 1, Fn: mathToInt},
	}
	return &ModuleValue{Path: "math", Exports: exports, Initialised: true}
}

func asNumber(v Value) (float64, bool) {
	n, ok := v.(*NumberValue)
	if !ok {
		return 0, false
	}
	return n.Value, true
}

func mathUnary(f func(float64) float64) func(*Interpreter, []Value) (Value, *RuntimeError) {
	return func(_ *Interpreter, args []Value) (Value, *RuntimeError) {
		n, ok := asNumber(args[0])
		if !ok {
			return nil, newRuntimeError(zeroPos, "expected a number argument")
		}
		return &NumberValue{Value: f(n)}, nil
	}
}

func mathUnaryNoArg(f func() float64) func(*Interpreter, []Value) (Value, *RuntimeError) {
	return func(_ *Interpreter, _ []Value) (Value, *RuntimeError) {
		return &NumberValue{Value: f()}, nil
	}
}

func mathBinary(f func(a, b float64) float64) func(*Interpreter, []Value) (Value, *RuntimeError) {
	return func(_ *Interpreter, args []Value) (Value, *RuntimeError) {
		a, ok1 := asNumber(args[0])
		b, ok2 := asNumber(args[1])
		if !ok1 || !ok2 {
			return nil, newRuntimeError(zeroPos, "expected two number arguments")
		}
		return &NumberValue{Value: f(a, b)}, nil
	}
}

func mathRandInt(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	n, ok := asNumber(args[0])
	if !ok {
		return nil, newRuntimeError(zeroPos, "math.rand_int() expects a number")
	}
	if n <= 0 {
		return &NumberValue{Value: 0}, nil
	}
	return &NumberValue{Value: float64(rand.Intn(int(n)))}, nil
}

func mathRandRange(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	lo, ok1 := asNumber(args[0])
	hi, ok2 := asNumber(args[1])
	if !ok1 || !ok2 {
		return nil, newRuntimeError(zeroPos, "math.rand_range() expects two numbers")
	}
	if hi <= lo {
		return &NumberValue{Value: lo}, nil
	}
	return &NumberValue{Value: lo + rand.Float64()*(hi-lo)}, nil
}

func mathIsInt(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	n, ok := asNumber(args[0])
	if !ok {
		return nil, newRuntimeError(zeroPos, "math.is_int() expects a number")
	}
	return boolValue(n == math.Trunc(n)), nil
}

func mathToInt(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	n, ok := asNumber(args[0])
	if !ok {
		return nil, newRuntimeError(zeroPos, "math.to_int() expects a number")
	}
	return &NumberValue{Value: math.Trunc(n)}, nil
}

// ---------------------------------------------------------------------
// Built-in method tables: string / list / dict (spec.md §6)
// ---------------------------------------------------------------------

// lookupNativeMethod finds the bound native method for a `.name` access
// on a string/list/dict receiver, per spec.md §4.4's property-get rule
// for non-instance receivers.
func lookupNativeMethod(receiver Value, name string) (*BoundNativeMethod, bool) {
	var table map[string]*NativeFunction
	switch receiver.(type) {
	case *StringValue:
		table = stringMethods
	case *ListValue:
		table = listMethods
	case *DictValue:
		table = dictMethods
	default:
		return nil, false
	}
	m, ok := table[name]
	if !ok {
		return nil, false
	}
	return &BoundNativeMethod{Receiver: receiver, Method: m}, true
}

var stringMethods = map[string]*NativeFunction{
	"len":       {Name: "len", Arity: 0, Fn: strLen},
	"split":     {Name: "split", Arity: 1, Fn: strSplit},
	"substring": {Name: "substring", Arity: 2, Fn: strSubstring},
	"replace":   {Name: "replace", Arity: 2, Fn: strReplace},
}

func strLen(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	s := args[0].(*StringValue)
	return &NumberValue{Value: float64(len(s.Value))}, nil
}

func strSplit(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	s := args[0].(*StringValue)
	sep, ok := args[1].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "split() expects a string separator")
	}
	parts := strings.Split(s.Value, sep.Value)
	elems := make([]Value, len(parts))
	for i, p := range parts {
		elems[i] = &StringValue{Value: p}
	}
	return &ListValue{Elements: elems}, nil
}

func strSubstring(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	s := args[0].(*StringValue)
	start, ok1 := asNumber(args[1])
	end, ok2 := asNumber(args[2])
	if !ok1 || !ok2 {
		return nil, newRuntimeError(zeroPos, "substring() expects two numbers")
	}
	lo, hi := int(start), int(end)
	if lo < 0 || hi > len(s.Value) || lo > hi {
		return nil, newRuntimeError(zeroPos, "substring() index out of range")
	}
	return &StringValue{Value: s.Value[lo:hi]}, nil
}

func strReplace(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	s := args[0].(*StringValue)
	old, ok1 := args[1].(*StringValue)
	new_, ok2 := args[2].(*StringValue)
	if !ok1 || !ok2 {
		return nil, newRuntimeError(zeroPos, "replace() expects two strings")
	}
	return &StringValue{Value: strings.ReplaceAll(s.Value, old.Value, new_.Value)}, nil
}

var listMethods = map[string]*NativeFunction{
	"push":    {Name: "push", Arity: 1, Fn: listPush},
	"pop":     {Name: "pop", Arity: 0, Fn: listPop},
	"len":     {Name: "len", Arity: 0, Fn: listLen},
	"insert":  {Name: "insert", Arity: 2, Fn: listInsert},
	"join":    {Name: "join", Arity: 1, Fn: listJoin},
	"reverse": {Name: "reverse", Arity: 0, Fn: listReverse},
	"map":     {Name: "map", Arity: 1, Fn: listMap},
	"filter":  {Name: "filter", Arity: 1, Fn: listFilter},
}

func listPush(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	l := args[0].(*ListValue)
	l.Elements = append(l.Elements, args[1])
	return theNil, nil
}

func listPop(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	l := args[0].(*ListValue)
	if len(l.Elements) == 0 {
		return nil, newRuntimeError(zeroPos, "pop() on an empty list")
	}
	last := l.Elements[len(l.Elements)-1]
	l.Elements = l.Elements[:len(l.Elements)-1]
	return last, nil
}

func listLen(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	l := args[0].(*ListValue)
	return &NumberValue{Value: float64(len(l.Elements))}, nil
}

func listInsert(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	l := args[0].(*ListValue)
	idx, ok := asNumber(args[1])
	if !ok {
		return nil, newRuntimeError(zeroPos, "insert() expects a number index")
	}
	i := int(idx)
	if i < 0 || i > len(l.Elements) {
		return nil, newRuntimeError(zeroPos, "insert() index out of range")
	}
	l.Elements = append(l.Elements, nil)
	copy(l.Elements[i+1:], l.Elements[i:])
	l.Elements[i] = args[2]
	return theNil, nil
}

func listJoin(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	l := args[0].(*ListValue)
	sep, ok := args[1].(*StringValue)
	if !ok {
		return nil, newRuntimeError(zeroPos, "join() expects a string separator")
	}
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return &StringValue{Value: strings.Join(parts, sep.Value)}, nil
}

func listReverse(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	l := args[0].(*ListValue)
	reversed := make([]Value, len(l.Elements))
	for i, e := range l.Elements {
		reversed[len(l.Elements)-1-i] = e
	}
	return &ListValue{Elements: reversed}, nil
}

func listMap(i *Interpreter, args []Value) (Value, *RuntimeError) {
	l := args[0].(*ListValue)
	out := make([]Value, len(l.Elements))
	for idx, e := range l.Elements {
		v, rerr := i.callValue(args[1], []Value{e}, zeroPos)
		if rerr != nil {
			return nil, rerr
		}
		out[idx] = v
	}
	return &ListValue{Elements: out}, nil
}

func listFilter(i *Interpreter, args []Value) (Value, *RuntimeError) {
	l := args[0].(*ListValue)
	var out []Value
	for _, e := range l.Elements {
		v, rerr := i.callValue(args[1], []Value{e}, zeroPos)
		if rerr != nil {
			return nil, rerr
		}
		if IsTruthy(v) {
			out = append(out, e)
		}
	}
	return &ListValue{Elements: out}, nil
}

var dictMethods = map[string]*NativeFunction{
	"keys":   {Name: "keys", Arity: 0, Fn: dictKeys},
	"values": {Name: "values", Arity: 0, Fn: dictValues},
	"has":    {Name: "has", Arity: 1, Fn: dictHas},
	"remove": {Name: "remove", Arity: 1, Fn: dictRemove},
}

func dictKeys(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	d := args[0].(*DictValue)
	elems := make([]Value, len(d.Order))
	for i, k := range d.Order {
		elems[i] = &StringValue{Value: k}
	}
	return &ListValue{Elements: elems}, nil
}

func dictValues(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	d := args[0].(*DictValue)
	elems := make([]Value, len(d.Order))
	for i, k := range d.Order {
		elems[i] = d.Entries[k]
	}
	return &ListValue{Elements: elems}, nil
}

func dictHas(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	d := args[0].(*DictValue)
	key := StringKeyOf(args[1])
	_, ok := d.Entries[key]
	return boolValue(ok), nil
}

func dictRemove(_ *Interpreter, args []Value) (Value, *RuntimeError) {
	d := args[0].(*DictValue)
	key := StringKeyOf(args[1])
	return boolValue(d.Remove(key)), nil
}
