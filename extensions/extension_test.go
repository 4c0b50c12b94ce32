package extensions_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lifetime.dev/lifetime/eval"
	"lifetime.dev/lifetime/extensions"
	"lifetime.dev/lifetime/lexer"
	"lifetime.dev/lifetime/object"
)

func TestMain(m *testing.M) {
	if err := extensions.Init(nil); err != nil {
		panic(err)
	}
	// Second call is a no-op.
	if err := extensions.Init(&extensions.Config{NoFileIO: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func exec(t *testing.T, src string, input string) (*eval.Container, bool, string, string) {
	t.Helper()
	c := eval.NewContainer(nil)
	out, errs := &strings.Builder{}, &strings.Builder{}
	c.Hooks = &eval.Hooks{Out: out, Err: errs}
	c.Hooks.In = eval.StdinReader(c.Hooks, strings.NewReader(input))
	ok := c.Exec(lexer.Lines(src), "ext.lt", false, false)
	return c, ok, out.String(), errs.String()
}

func TestBuiltinsRegistered(t *testing.T) {
	c := eval.NewContainer(nil)
	names := make(map[string]bool)
	for _, f := range c.Functions() {
		names[f.Key().String()] = true
	}
	for _, n := range []string{
		"sys->io::print", "sys->io::print_line", "sys->io::read_line",
		"sys->tools::is_null", "sys->tools::split_str", "sys->tools::create_array", "sys->tools::length",
		"sys->dev::bindns", "sys->dev::unbindns",
		"sys->fl::open_r", "sys->fl::open_w", "sys->fl::open_rw", "sys->fl::close",
		"sys->fl::read_as_str", "sys->fl::write_str", "sys->fl::enum_dir",
		"sys->test::ret_true", "sys->test::ret_false", "sys->test::print_line_arr",
		"sys->rt::lt_ver",
		"sys->error::get_message", "sys->error::get_line_num", "sys->error::get_line_content",
	} {
		if !names[n] {
			t.Errorf("missing builtin %s", n)
		}
	}
}

func TestIO(t *testing.T) {
	tests := []struct {
		src      string
		input    string
		expected string
	}{
		{`!sys->io::print "a" 1 true`, "", "a1true"},
		{`!sys->io::print_line`, "", "\n"},
		{`!sys->io::print_line "a" "b"`, "", "a\nb\n"},
		{`!sys->io::print_line !sys->io::read_line "name? "`, "Ada\n", "name? Ada\n"},
		{`!sys->io::print_line !sys->io::read_line "q: "`, "no newline", "q: no newline\n"},
	}
	for _, tt := range tests {
		_, ok, out, errs := exec(t, tt.src, tt.input)
		if !ok || out != tt.expected {
			t.Errorf("%q got %v %q (%s), want %q", tt.src, ok, out, errs, tt.expected)
		}
	}
}

func TestTools(t *testing.T) {
	src := `
let obj arr !sys->tools::split_str "a,b,,c" ","
!sys->test::print_line_arr $arr
!sys->test::print_line_arr !sys->tools::create_array "x" 2
!sys->io::print_line !sys->tools::is_null ""
!sys->io::print_line !sys->tools::is_null "x"
!sys->io::print_line !sys->tools::length "héllo 👍🏽"
!sys->io::print_line !sys->test::ret_false
`
	_, ok, out, errs := exec(t, src, "")
	if !ok {
		t.Fatalf("failed: %s", errs)
	}
	expected := "a\nb\n\nc\nx\n2\ntrue\nfalse\n7\nfalse\n"
	if out != expected {
		t.Errorf("got %q, want %q", out, expected)
	}
}

func TestBindNamespace(t *testing.T) {
	src := `
!sys->dev::bindns "sys"
!io::print_line "bound"
!sys->dev::unbindns "sys"
!io::print_line "unbound"
`
	c, ok, out, errs := exec(t, src, "")
	if ok || out != "bound\n" || !strings.Contains(errs, "Function not found: io::print_line") {
		t.Errorf("got %v %q %q", ok, out, errs)
	}
	if len(c.Bound()) != 0 {
		t.Errorf("bound got %v", c.Bound())
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	utf16 := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
	files := map[string][]byte{
		"plain.txt": []byte("line1\nline2"),
		"bom8.txt":  append([]byte{0xEF, 0xBB, 0xBF}, "bom"...),
		"utf16.txt": utf16,
		"out.txt":   nil,
	}
	for n, content := range files {
		if err := os.WriteFile(filepath.Join(dir, n), content, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o700); err != nil {
		t.Fatal(err)
	}
	p := func(n string) string { return `"` + filepath.Join(dir, n) + `"` }
	src := `
let i32 h !sys->fl::open_r ` + p("plain.txt") + `
!sys->io::print_line !sys->fl::read_as_str $h
!sys->io::print_line !sys->fl::read_as_str $h
!sys->fl::close $h
let i32 b !sys->fl::open_rw ` + p("bom8.txt") + `
!sys->io::print_line !sys->fl::read_as_str $b
let i32 u !sys->fl::open_r ` + p("utf16.txt") + `
!sys->io::print_line !sys->fl::read_as_str $u
let i32 w !sys->fl::open_w ` + p("out.txt") + `
!sys->fl::write_str $w "written"
!sys->test::print_line_arr !sys->fl::enum_dir ` + p("") + `
`
	c, ok, out, errs := exec(t, src, "")
	if !ok {
		t.Fatalf("failed: %s", errs)
	}
	expected := "line1\nline2\nline1\nline2\nbom\nhi\nbom8.txt\nout.txt\nplain.txt\nutf16.txt\n"
	if out != expected {
		t.Errorf("got %q, want %q", out, expected)
	}
	if c.Handles().Len() != 0 {
		t.Errorf("handles should be closed at the end, %d open", c.Handles().Len())
	}
	written, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil || string(written) != "written" {
		t.Errorf("write_str got %q %v", written, err)
	}
}

func TestFileErrors(t *testing.T) {
	name := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(name, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		src      string
		expected string
	}{
		{`!sys->fl::open_r "/nonexistent/file"`, "File not found: /nonexistent/file"},
		{`!sys->fl::close 3`, "invalid or closed file handle"},
		{"let i32 h !sys->fl::open_r \"" + name + "\"\n!sys->fl::close $h\n!sys->fl::close $h", "invalid or closed file handle"},
		{"let i32 h !sys->fl::open_r \"" + name + "\"\n!sys->fl::write_str $h \"x\"", "nonwritable"},
		{"let i32 h !sys->fl::open_w \"" + name + "\"\n!sys->fl::read_as_str $h", "nonreadable"},
		{`!sys->fl::read_as_str`, "invalid or closed file handle"},
		{`!sys->fl::enum_dir "/nonexistent/dir"`, "does not exist"},
	}
	for _, tt := range tests {
		_, ok, _, errs := exec(t, tt.src, "")
		if ok || !strings.Contains(errs, tt.expected) {
			t.Errorf("%q got %v %q, want %q", tt.src, ok, errs, tt.expected)
		}
	}
}

func TestVersion(t *testing.T) {
	c, ok, _, errs := exec(t, `!sys->rt::lt_ver`, "")
	if !ok || c.Last() == nil || c.Last().Type != object.STR {
		t.Errorf("lt_ver got %v %v (%s)", ok, c.Last(), errs)
	}
}
