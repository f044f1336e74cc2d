// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package libc registers the "libc" native backend on Linux. It resolves ioctl
// and setsockopt in the C runtime already loaded in the process, and
// clock_gettime in an explicitly loaded librt, through dlopen/dlsym.
//
// Import it for its side effect:
//
//	import _ "github.com/DataDog/unixutils/pkg/unixutils/native/libc"
//
// On other systems and architectures the package is empty.
package libc
