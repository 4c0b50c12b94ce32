package extensions

import (
	"fmt"
	"io"
	"os"

	"fortio.org/log"
	"fortio.org/safecast"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"lifetime.dev/lifetime/eval"
	"lifetime.dev/lifetime/object"
)

func fileFunctions() []object.Function {
	open := func(mode eval.Mode) object.Callback {
		return func(env any, args []*object.Value) (*object.Value, error) {
			name, err := requireString(args[0])
			if err != nil {
				return nil, err
			}
			idx, err := container(env).Handles().Open(name, mode)
			if err != nil {
				return nil, fmt.Errorf("File not found: %s (%w)", name, err)
			}
			h, err := safecast.Convert[int32](idx)
			if err != nil {
				return nil, err
			}
			return object.NewI32("_handleinx", h), nil
		}
	}
	return []object.Function{
		{
			Class: "fl", Name: "open_r", Returns: object.I32,
			Params: params(object.STR, "filename"), Help: "opens an existing file for reading",
			Callback: open(eval.ReadOnly),
		},
		{
			Class: "fl", Name: "open_w", Returns: object.I32,
			Params: params(object.STR, "filename"), Help: "opens an existing file for writing",
			Callback: open(eval.WriteOnly),
		},
		{
			Class: "fl", Name: "open_rw", Returns: object.I32,
			Params: params(object.STR, "filename"), Help: "opens an existing file for reading and writing",
			Callback: open(eval.ReadWrite),
		},
		{
			Class: "fl", Name: "close",
			Params: params(object.I32, "handle"), Help: "closes a handle",
			Callback: func(env any, args []*object.Value) (*object.Value, error) {
				h, err := handle(env, args[0])
				if err != nil {
					return nil, err
				}
				return nil, container(env).Handles().Close(h)
			},
		},
		{
			Class: "fl", Name: "read_as_str", Returns: object.STR,
			Params: params(object.I32, "handle"), Help: "reads the whole file, the handle position is unchanged",
			Callback: readAsStr,
		},
		{
			Class: "fl", Name: "write_str",
			Params: params(object.I32, "handle", object.STR, "content"), Help: "writes content at the handle position",
			Callback: func(env any, args []*object.Value) (*object.Value, error) {
				h, err := handle(env, args[0])
				if err != nil {
					return nil, err
				}
				hd, err := container(env).Handles().Get(h)
				if err != nil {
					return nil, err
				}
				if !hd.Mode.CanWrite() {
					return nil, fmt.Errorf("Can't write to nonwritable handle %d", h)
				}
				_, err = hd.File.WriteString(args[1].String())
				return nil, err
			},
		},
		{
			Class: "fl", Name: "enum_dir", Returns: object.OBJ,
			Params: params(object.STR, "path"), Help: "array of the names of the files in path",
			Callback: enumDir,
		},
	}
}

func handle(env any, v *object.Value) (int, error) {
	n, err := v.Int()
	if err != nil {
		return -1, fmt.Errorf("%w: %w", eval.ErrBadHandle, err)
	}
	return safecast.Convert[int](n)
}

// readAsStr decodes the content according to its BOM (UTF-8 without one).
func readAsStr(env any, args []*object.Value) (*object.Value, error) {
	h, err := handle(env, args[0])
	if err != nil {
		return nil, err
	}
	hd, err := container(env).Handles().Get(h)
	if err != nil {
		return nil, err
	}
	if !hd.Mode.CanRead() {
		return nil, fmt.Errorf("Can't read from nonreadable handle %d", h)
	}
	info, err := hd.File.Stat()
	if err != nil {
		return nil, err
	}
	if err = object.CheckPayloadSize(info.Size()); err != nil {
		return nil, err
	}
	// SectionReader uses ReadAt: the file offset doesn't move.
	r := transform.NewReader(io.NewSectionReader(hd.File, 0, info.Size()), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	log.LogVf("read_as_str: %d bytes from %s, %d decoded", info.Size(), hd.Name, len(b))
	return object.NewString("_content", string(b)), nil
}

func enumDir(_ any, args []*object.Value) (*object.Value, error) {
	path, err := requireString(args[0])
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("Directory '%s' does not exist (%w)", path, err)
	}
	files := make([]*object.Value, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, object.NewString("", e.Name()))
	}
	return eval.NewArray("_files", files), nil
}
