// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package native

import "fmt"

// Cause classifies why binding failed. Every cause disables native integration.
type Cause int

const (
	// CauseRuntimeAbsent means the bridging runtime (backend or C runtime) is missing.
	CauseRuntimeAbsent Cause = iota + 1
	// CauseSymbolUnresolved means a required symbol or its library could not be found.
	CauseSymbolUnresolved
	// CauseRuntimeIncompatible means the bridging runtime does not behave as expected.
	CauseRuntimeIncompatible
)

func (c Cause) String() string {
	switch c {
	case CauseRuntimeAbsent:
		return "runtime absent"
	case CauseSymbolUnresolved:
		return "symbol unresolved"
	case CauseRuntimeIncompatible:
		return "runtime incompatible"
	default:
		return fmt.Sprintf("cause(%d)", int(c))
	}
}

// BindingError is returned by Bind.
type BindingError struct {
	Backend string
	Cause   Cause
	Err     error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("native backend %q: %s: %v", e.Backend, e.Cause, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// CallError is returned by Calls implementations when the native call fails.
type CallError struct {
	Op  Op
	Req uint
	Err error
}

func (e *CallError) Error() string {
	if e.Req != 0 {
		return fmt.Sprintf("%s(%#x): %v", SymbolName(e.Op), e.Req, e.Err)
	}
	return fmt.Sprintf("%s: %v", SymbolName(e.Op), e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}
