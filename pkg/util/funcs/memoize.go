// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package funcs provides helpers to compute a value exactly once per process.
package funcs

import (
	"sync"
)

type memoizedFunc[T any] struct {
	once   sync.Once
	fn     func() (T, error)
	result T
	err    error
}

func (mf *memoizedFunc[T]) do() (T, error) {
	mf.once.Do(func() {
		mf.result, mf.err = mf.fn()
	})
	return mf.result, mf.err
}

// Memoize the result of a function call.
//
// fn is only ever called once, even if it returns an error.
func Memoize[T any](fn func() (T, error)) func() (T, error) {
	return (&memoizedFunc[T]{fn: fn}).do
}

// MemoizeNoError is Memoize for functions that cannot fail.
func MemoizeNoError[T any](fn func() T) func() T {
	memo := Memoize(func() (T, error) {
		return fn(), nil
	})
	return func() T {
		v, _ := memo()
		return v
	}
}
