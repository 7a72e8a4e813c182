// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package main

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"
)

// memLimit bounds the Go runtime's soft memory limit so a process that opens
// many tables (each mmap'd and partly paged in as probes touch it) doesn't
// grow the heap without bound when GOGC alone would let it. A single env
// var, parsed once; a malformed value is a configuration error worth
// panicking over, a missing one just takes the default.
var memLimit = calcMemLimit()

func calcMemLimit() int64 {
	if e := os.Getenv("SYZYGY_MEMLIMIT_GB"); e != "" {
		f, err := strconv.ParseFloat(e, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			panic("malformed SYZYGY_MEMLIMIT_GB environment variable, should be a number of gigabytes: " + e)
		}
		return int64(f * 1024 * 1024 * 1024)
	}
	return 2 * 1024 * 1024 * 1024 // fall back on 2GiB
}

func init() {
	debug.SetMemoryLimit(memLimit)
}
