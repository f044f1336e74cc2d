// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package native binds the handful of kernel entry points unixutils needs.
//
// Four logical operations are bound: two shapes of the ioctl control call, the
// setsockopt call and the real-time clock read. ioctl takes an untyped buffer as
// its last argument, so every operation whose name starts with "ioctl" resolves
// to the one underlying "ioctl" symbol whatever the shape of its result.
package native

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"
)

// Op is the name of a logical native operation.
type Op string

const (
	// OpIoctlReturnsInt is ioctl writing a single int into its argument.
	OpIoctlReturnsInt Op = "ioctl_returns_int"
	// OpIoctlReturnsLongs is ioctl writing two 64-bit integers into its argument.
	OpIoctlReturnsLongs Op = "ioctl_returns_longs"
	// OpSetsockopt is setsockopt with an int option value.
	OpSetsockopt Op = "setsockopt"
	// OpClockGettime is clock_gettime writing a {sec, nsec} pair.
	OpClockGettime Op = "clock_gettime"
)

// Ops lists every logical operation a backend must resolve.
var Ops = []Op{OpIoctlReturnsInt, OpIoctlReturnsLongs, OpSetsockopt, OpClockGettime}

const controlMultiplexPrefix = "ioctl"

// SymbolName maps a logical operation to the native symbol implementing it.
func SymbolName(op Op) string {
	if strings.HasPrefix(string(op), controlMultiplexPrefix) {
		return controlMultiplexPrefix
	}
	return string(op)
}

// Symbol is a resolved native entry point. For the syscall backend Addr is the
// trap number, for the libc backend it is the function address.
type Symbol struct {
	Name    string
	Library string
	Addr    uintptr
}

// Table is an immutable logical operation to symbol mapping.
type Table struct {
	symbols map[Op]Symbol
}

// Lookup returns the symbol bound to op.
func (t Table) Lookup(op Op) (Symbol, bool) {
	s, ok := t.symbols[op]
	return s, ok
}

// Len returns the number of bound operations.
func (t Table) Len() int {
	return len(t.symbols)
}

// ResolveFunc resolves a native symbol by name.
type ResolveFunc func(name string) (Symbol, error)

// Resolve builds the table for every operation in Ops. Each distinct symbol
// name is resolved once, so operations sharing a name share the same Symbol.
// All resolution failures are reported together.
func Resolve(backend string, resolve ResolveFunc) (Table, error) {
	resolved := make(map[string]Symbol)
	var errs error
	for _, op := range Ops {
		name := SymbolName(op)
		if _, ok := resolved[name]; ok {
			continue
		}
		sym, err := resolve(name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		resolved[name] = sym
	}
	if errs != nil {
		return Table{}, &BindingError{Backend: backend, Cause: CauseSymbolUnresolved, Err: errs}
	}

	symbols := make(map[Op]Symbol, len(Ops))
	for _, op := range Ops {
		symbols[op] = resolved[SymbolName(op)]
	}
	return Table{symbols: symbols}, nil
}

// Calls are the typed entry points backing the logical operations. A failed
// call returns a non-nil error, values are meaningful only when err is nil.
type Calls interface {
	IoctlReturnsInt(fd int, req uint) (int32, error)
	IoctlReturnsLongs(fd int, req uint) ([2]int64, error)
	Setsockopt(fd int, level int, opt int, value int32) error
	ClockGettime(clockID int) ([2]int64, error)
}

// Bindings is the result of a successful bind. It is immutable.
type Bindings struct {
	backend string
	table   Table
	calls   Calls
}

// NewBindings assembles bindings from a resolved table and the calls using it.
func NewBindings(backend string, table Table, calls Calls) *Bindings {
	return &Bindings{backend: backend, table: table, calls: calls}
}

// BindCalls builds bindings around calls without resolving any native
// symbol. It is meant for test doubles forcing the capability on.
func BindCalls(backend string, calls Calls) *Bindings {
	table, _ := Resolve(backend, func(name string) (Symbol, error) {
		return Symbol{Name: name, Library: backend}, nil
	})
	return NewBindings(backend, table, calls)
}

// Backend returns the name of the backend that produced the bindings.
func (b *Bindings) Backend() string { return b.backend }

// Table returns the operation to symbol table.
func (b *Bindings) Table() Table { return b.table }

// Calls returns the bound entry points.
func (b *Bindings) Calls() Calls { return b.calls }

const (
	// BackendSyscall enters the kernel directly through golang.org/x/sys/unix.
	BackendSyscall = "syscall"
	// BackendLibc calls into the C runtime, see package native/libc.
	BackendLibc = "libc"
)

// Options configures the backends.
type Options struct {
	// LibcLibrary is the C runtime holding ioctl and setsockopt.
	LibcLibrary string
	// RtLibrary is the secondary runtime holding clock_gettime.
	RtLibrary string
}

// Backend binds every operation or returns a *BindingError.
type Backend func(opts Options) (*Bindings, error)

var (
	backendsMu sync.RWMutex
	backends   = map[string]Backend{}
)

// RegisterBackend makes a backend available by name. It is meant to be called
// from init functions and panics on duplicates.
func RegisterBackend(name string, b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if _, dup := backends[name]; dup {
		panic("native: RegisterBackend called twice for backend " + name)
	}
	backends[name] = b
}

// Backends returns the sorted names of the registered backends.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrUnknownBackend is returned when no backend is registered under a name.
var ErrUnknownBackend = errors.New("unknown native backend")

// Bind resolves every operation with the named backend. A panic raised while
// binding is recovered and reported as CauseRuntimeIncompatible.
func Bind(name string, opts Options) (b *Bindings, err error) {
	backendsMu.RLock()
	backend, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return nil, &BindingError{Backend: name, Cause: CauseRuntimeAbsent, Err: ErrUnknownBackend}
	}

	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = &BindingError{Backend: name, Cause: CauseRuntimeIncompatible, Err: fmt.Errorf("panic while binding: %v", r)}
		}
	}()

	b, err = backend(opts)
	if err != nil {
		var bindErr *BindingError
		if errors.As(err, &bindErr) {
			return nil, err
		}
		return nil, &BindingError{Backend: name, Cause: CauseSymbolUnresolved, Err: err}
	}
	if err := validate(b); err != nil {
		return nil, &BindingError{Backend: name, Cause: CauseRuntimeIncompatible, Err: err}
	}
	return b, nil
}

func validate(b *Bindings) error {
	if b == nil || b.calls == nil {
		return errors.New("backend returned no entry points")
	}
	var (
		ioctl     Symbol
		seenIoctl bool
	)
	for _, op := range Ops {
		sym, ok := b.table.Lookup(op)
		if !ok {
			return fmt.Errorf("operation %s is not bound", op)
		}
		if SymbolName(op) != controlMultiplexPrefix {
			continue
		}
		if !seenIoctl {
			ioctl, seenIoctl = sym, true
		} else if sym != ioctl {
			return fmt.Errorf("operation %s bound to %+v, expected %+v", op, sym, ioctl)
		}
	}
	return nil
}
