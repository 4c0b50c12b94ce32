// Package extensions is the lifetime builtin library (the sys namespace).
// Functions are registered globally through object.CreateFunction and
// seeded into every new eval.Container.
package extensions

import (
	"errors"
	"strings"

	"fortio.org/log"
	"fortio.org/safecast"
	"fortio.org/version"
	"github.com/rivo/uniseg"
	"lifetime.dev/lifetime/eval"
	"lifetime.dev/lifetime/object"
)

var (
	initDone  = false
	errInInit error
)

// Namespace of all the builtins.
const Namespace = "sys"

// Configure restrictions and features.
type Config struct {
	NoFileIO bool // sys->fl functions are only present if this is false.
}

// Init initializes the extensions, can be called multiple time safely but should really be called only once
// before creating containers. If the passed [Config] pointer is nil, default values are used.
func Init(c *Config) error {
	if initDone {
		return errInInit
	}
	if c == nil {
		c = &Config{}
	}
	errInInit = initInternal(c)
	initDone = true
	return errInInit
}

func initInternal(c *Config) error {
	groups := [][]object.Function{ioFunctions(), toolsFunctions(), devFunctions(), testFunctions(), rtFunctions(), errorFunctions()}
	if !c.NoFileIO {
		groups = append(groups, fileFunctions())
	}
	n := 0
	for _, g := range groups {
		for _, f := range g {
			f.Namespace = Namespace
			if err := object.CreateFunction(f); err != nil {
				return err
			}
			n++
		}
	}
	log.LogVf("Registered %d builtins (file io %t)", n, !c.NoFileIO)
	return nil
}

// MustCreate is for registering additional builtins.
func MustCreate(f object.Function) {
	err := object.CreateFunction(f)
	if err != nil {
		panic(err)
	}
}

func container(env any) *eval.Container {
	return env.(*eval.Container) // will panic if any is wrong and that's ok as that'd be a bug.
}

func params(typeAndNames ...any) []object.Param {
	res := make([]object.Param, 0, len(typeAndNames)/2)
	for i := 0; i+1 < len(typeAndNames); i += 2 {
		res = append(res, object.Param{Type: typeAndNames[i].(object.Type), Name: typeAndNames[i+1].(string)})
	}
	return res
}

func requireString(v *object.Value) (string, error) {
	if v.IsNull() {
		return "", errors.New(v.Name + " can't be null")
	}
	return v.String(), nil
}

func toolsFunctions() []object.Function {
	return []object.Function{
		{
			Class: "tools", Name: "is_null", Returns: object.BOOL,
			Params: params(object.OBJ, "object"),
			Help:   "returns true if the argument is null",
			Callback: func(_ any, args []*object.Value) (*object.Value, error) {
				return object.NewBool("_ret", args[0].IsNull()), nil
			},
		},
		{
			Class: "tools", Name: "split_str", Returns: object.OBJ,
			Params: params(object.STR, "string", object.STR, "separator"),
			Help:   "splits string around separator into an array",
			Callback: func(_ any, args []*object.Value) (*object.Value, error) {
				if args[0].IsNull() {
					return object.New(object.OBJ, "_arr"), nil
				}
				parts := strings.Split(args[0].String(), args[1].String())
				return object.NewObject("_arr", strings.Join(parts, eval.ArraySep)), nil
			},
		},
		{
			Class: "tools", Name: "create_array", Returns: object.OBJ, Tolerant: true,
			Help: "returns an array of its arguments",
			Callback: func(_ any, args []*object.Value) (*object.Value, error) {
				return eval.NewArray("_arr", args), nil
			},
		},
		{
			Class: "tools", Name: "length", Returns: object.I32,
			Params: params(object.STR, "string"),
			Help:   "number of user perceived characters (grapheme clusters) of string",
			Callback: func(_ any, args []*object.Value) (*object.Value, error) {
				n, err := safecast.Convert[int32](uniseg.GraphemeClusterCount(args[0].String()))
				if err != nil {
					return nil, err
				}
				return object.NewI32("_len", n), nil
			},
		},
	}
}

func devFunctions() []object.Function {
	return []object.Function{
		{
			Class: "dev", Name: "bindns",
			Params: params(object.STR, "namespace"),
			Help:   "adds namespace to the search list of class::name identifiers",
			Callback: func(env any, args []*object.Value) (*object.Value, error) {
				ns, err := requireString(args[0])
				if err != nil {
					return nil, err
				}
				if !container(env).Bind(ns) {
					log.LogVf("Namespace %s already bound", ns)
				}
				return nil, nil
			},
		},
		{
			Class: "dev", Name: "unbindns",
			Params: params(object.STR, "namespace"),
			Help:   "removes namespace from the search list",
			Callback: func(env any, args []*object.Value) (*object.Value, error) {
				container(env).Unbind(args[0].String())
				return nil, nil
			},
		},
	}
}

func testFunctions() []object.Function {
	return []object.Function{
		{
			Class: "test", Name: "ret_true", Returns: object.BOOL,
			Callback: func(_ any, _ []*object.Value) (*object.Value, error) {
				return object.NewBool("_v", true), nil
			},
		},
		{
			Class: "test", Name: "ret_false", Returns: object.BOOL,
			Callback: func(_ any, _ []*object.Value) (*object.Value, error) {
				return object.NewBool("_v", false), nil
			},
		},
		{
			Class: "test", Name: "print_line_arr",
			Params: params(object.OBJ, "arr"),
			Help:   "prints each element of arr on its own line",
			Callback: func(env any, args []*object.Value) (*object.Value, error) {
				c := container(env)
				for _, e := range eval.ArrayElements(args[0]) {
					c.Print(e + "\n")
				}
				return nil, nil
			},
		},
	}
}

func rtFunctions() []object.Function {
	return []object.Function{
		{
			Class: "rt", Name: "lt_ver", Returns: object.STR,
			Help: "runtime version",
			Callback: func(_ any, _ []*object.Value) (*object.Value, error) {
				short, _, _ := version.FromBuildInfo()
				return object.NewString("_ver", short), nil
			},
		},
	}
}

var errNotCaught = errors.New("Function called outside of catch statement")

func errorFunctions() []object.Function {
	caught := func(env any) (*object.Error, error) {
		e := container(env).Caught()
		if e == nil {
			return nil, errNotCaught
		}
		return e, nil
	}
	return []object.Function{
		{
			Class: "error", Name: "get_message", Returns: object.STR,
			Help: "message of the caught error",
			Callback: func(env any, _ []*object.Value) (*object.Value, error) {
				e, err := caught(env)
				if err != nil {
					return nil, err
				}
				return object.NewString("_msg", e.Message), nil
			},
		},
		{
			Class: "error", Name: "get_line_num", Returns: object.I32,
			Help: "line number of the caught error",
			Callback: func(env any, _ []*object.Value) (*object.Value, error) {
				e, err := caught(env)
				if err != nil {
					return nil, err
				}
				n, err := safecast.Convert[int32](e.Number)
				if err != nil {
					return nil, err
				}
				return object.NewI32("_num", n), nil
			},
		},
		{
			Class: "error", Name: "get_line_content", Returns: object.STR,
			Help: "content of the line of the caught error",
			Callback: func(env any, _ []*object.Value) (*object.Value, error) {
				e, err := caught(env)
				if err != nil {
					return nil, err
				}
				return object.NewString("_line", e.Line), nil
			},
		},
	}
}
