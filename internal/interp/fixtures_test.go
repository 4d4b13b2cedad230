package interp

import (
	"bytes"
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestMain lets go-snaps prune obsolete snapshots left behind by fixtures
// that get renamed or removed, mirroring the teacher's own snapshot
// test harness.
func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

// fixture is one whole-program scenario: Rox source in, expected print
// buffer out. These exercise the evaluator end to end the way the
// teacher's own fixture suite drives the DWScript interpreter, scaled
// down to Rox's much smaller surface.
type fixture struct {
	name   string
	source string
}

var fixtures = []fixture{
	{
		name: "arithmetic_and_print",
		source: `
var a = 2 + 3 * 4;
print a;
print (2 + 3) * 4;
`,
	},
	{
		name: "closures_and_functions",
		source: `
fun makeCounter() {
  var n = 0;
  fun increment() {
    n = n + 1;
    return n;
  }
  return increment;
}
var counter = makeCounter();
print counter();
print counter();
print counter();
`,
	},
	{
		name: "classes_and_inheritance",
		source: `
class Animal {
  init(name) { this.name = name; }
  speak() { return this.name + " makes a sound"; }
}
class Dog < Animal {
  speak() { return super.speak() + ", specifically a bark"; }
}
var d = Dog("Rex");
print d.speak();
`,
	},
	{
		name: "control_flow",
		source: `
var i = 0;
var sum = 0;
while (i < 5) {
  if (i == 2) { i = i + 1; continue; }
  sum = sum + i;
  i = i + 1;
}
print sum;
for (var j = 0; j < 3; j = j + 1) {
  print j;
}
`,
	},
	{
		name: "try_catch_throw",
		source: `
try {
  throw "boom";
} catch (e) {
  print "caught: " + e;
}
`,
	},
	{
		name: "lists_tuples_dicts",
		source: `
var xs = [1, 2, 3];
xs.push(4);
print xs;
var t = (1, "two", 3.0);
print t;
var d = {"a": 1, "b": 2};
print d.keys();
`,
	},
	{
		name: "string_and_list_natives",
		source: `
print "hello".len();
print "a,b,c".split(",");
print [3, 1, 2].map(fun(x) { return x * 2; });
`,
	},
	{
		name: "math_native",
		source: `
print math.sqrt(16);
print math.max(3, 7);
`,
	},
}

func TestFixtures(t *testing.T) {
	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			var buf bytes.Buffer
			interp := New(".", &buf)

			compileErrs, runtimeErr := interp.RunSource(f.source)
			if len(compileErrs) != 0 {
				t.Fatalf("unexpected compile errors: %v", compileErrs)
			}
			if runtimeErr != nil {
				t.Fatalf("unexpected runtime error: %v", runtimeErr)
			}

			snaps.MatchSnapshot(t, buf.String())
		})
	}
}

// TestFixtureRuntimeErrors snapshots the error text itself for scenarios
// that are expected to fail at run time, so a change in error wording is
// caught the same way an output regression would be.
func TestFixtureRuntimeErrors(t *testing.T) {
	errorFixtures := []fixture{
		{name: "undefined_variable", source: `print undefinedThing;`},
		{name: "arity_mismatch", source: `fun f(a, b) { return a + b; } f(1);`},
		{name: "index_out_of_range", source: `var xs = [1, 2]; print xs[5];`},
	}

	for _, f := range errorFixtures {
		t.Run(f.name, func(t *testing.T) {
			var buf bytes.Buffer
			interp := New(".", &buf)

			_, runtimeErr := interp.RunSource(f.source)
			if runtimeErr == nil {
				t.Fatalf("expected a runtime error, got none")
			}
			snaps.MatchSnapshot(t, runtimeErr.Error())
		})
	}
}

// TestStackTraceSurvivesUnwind locks in that Interpreter.Stack() still
// reports the call chain after RunSource returns an uncaught error: the
// frames must not be popped on the error path, only on normal return.
func TestStackTraceSurvivesUnwind(t *testing.T) {
	var buf bytes.Buffer
	interp := New(".", &buf)

	source := `
fun inner() { return 1 / 0; }
fun outer() { return inner(); }
outer();
`
	_, runtimeErr := interp.RunSource(source)
	if runtimeErr == nil {
		t.Fatalf("expected a runtime error, got none")
	}

	st := interp.Stack()
	if st.Depth() == 0 {
		t.Fatalf("expected a non-empty stack trace at the point of the error, got none")
	}

	// A later successful call must not leave stale frames behind: each
	// RunSource call starts with a clean stack.
	if _, runtimeErr := interp.RunSource(`fun ok() { return 1; } ok();`); runtimeErr != nil {
		t.Fatalf("unexpected runtime error: %v", runtimeErr)
	}
	if st := interp.Stack(); st.Depth() != 0 {
		t.Fatalf("expected an empty stack after a successful run, got depth %d", st.Depth())
	}
}

// TestTryCatchClearsStackOnCatch verifies a caught error doesn't leave
// the frames it unwound through sitting on the stack for an unrelated,
// later uncaught error to inherit.
func TestTryCatchClearsStackOnCatch(t *testing.T) {
	var buf bytes.Buffer
	interp := New(".", &buf)

	source := `
fun boom() { throw "boom"; }
try {
  boom();
} catch (e) {
  print "caught: " + e;
}
undefinedThing;
`
	_, runtimeErr := interp.RunSource(source)
	if runtimeErr == nil {
		t.Fatalf("expected a runtime error, got none")
	}
	if st := interp.Stack(); st.Depth() != 0 {
		t.Fatalf("expected no leftover frames from the caught error, got depth %d", st.Depth())
	}
}
