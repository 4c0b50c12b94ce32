package eval

import (
	"errors"
	"fmt"
	"os"

	"fortio.org/log"
)

var ErrBadHandle = errors.New("invalid or closed file handle")

type Mode uint8

const (
	ReadOnly Mode = iota
	WriteOnly
	ReadWrite
)

func (m Mode) CanRead() bool {
	return m != WriteOnly
}

func (m Mode) CanWrite() bool {
	return m != ReadOnly
}

func (m Mode) flags() int {
	switch m {
	case WriteOnly:
		return os.O_WRONLY
	case ReadWrite:
		return os.O_RDWR
	default:
		return os.O_RDONLY
	}
}

type Handle struct {
	File *os.File
	Name string
	Mode Mode
}

// Handles is the open file table of a container, shared with its clones.
// Indexes are stable: closed slots stay empty.
type Handles struct {
	list []*Handle
}

func NewHandles() *Handles {
	return &Handles{}
}

// Open opens an existing file and returns its index.
func (h *Handles) Open(name string, mode Mode) (int, error) {
	f, err := os.OpenFile(name, mode.flags(), 0)
	if err != nil {
		return -1, err
	}
	h.list = append(h.list, &Handle{File: f, Name: name, Mode: mode})
	idx := len(h.list) - 1
	log.LogVf("Opened %s as handle %d", name, idx)
	return idx, nil
}

func (h *Handles) Get(idx int) (*Handle, error) {
	if idx < 0 || idx >= len(h.list) || h.list[idx] == nil {
		return nil, fmt.Errorf("%w: %d", ErrBadHandle, idx)
	}
	return h.list[idx], nil
}

func (h *Handles) Close(idx int) error {
	hd, err := h.Get(idx)
	if err != nil {
		return err
	}
	h.list[idx] = nil
	return hd.File.Close()
}

// Len is the number of open handles.
func (h *Handles) Len() int {
	n := 0
	for _, hd := range h.list {
		if hd != nil {
			n++
		}
	}
	return n
}

// CloseAll force closes every open handle and returns how many were.
func (h *Handles) CloseAll() int {
	n := 0
	for i, hd := range h.list {
		if hd == nil {
			continue
		}
		if err := hd.File.Close(); err != nil {
			log.Warnf("Error closing handle %d (%s): %v", i, hd.Name, err)
		}
		h.list[i] = nil
		n++
	}
	if n > 0 {
		log.LogVf("Force closed %d handle(s)", n)
	}
	return n
}
