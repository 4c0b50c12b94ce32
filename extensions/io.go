package extensions

import (
	"lifetime.dev/lifetime/object"
)

func ioFunctions() []object.Function {
	return []object.Function{
		{
			Class: "io", Name: "print", Tolerant: true,
			Help: "prints each argument",
			Callback: func(env any, args []*object.Value) (*object.Value, error) {
				c := container(env)
				for _, a := range args {
					c.Print(a.String())
				}
				return nil, nil
			},
		},
		{
			Class: "io", Name: "print_line", Tolerant: true,
			Help: "prints each argument followed by a newline",
			Callback: func(env any, args []*object.Value) (*object.Value, error) {
				c := container(env)
				if len(args) == 0 {
					c.Print("\n")
				}
				for _, a := range args {
					c.Print(a.String() + "\n")
				}
				return nil, nil
			},
		},
		{
			Class: "io", Name: "read_line", Returns: object.STR,
			Params: params(object.STR, "question"),
			Help:   "prints question and reads one line of input",
			Callback: func(env any, args []*object.Value) (*object.Value, error) {
				s, err := container(env).Input(args[0].String())
				if err != nil {
					return nil, err
				}
				return object.NewString("_answer", s), nil
			},
		},
	}
}
