// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Command wardenctl is a reference CLI exercising the warden engine's full
// surface: decisions, mutations, templates, stats, and a serve mode that
// hosts a Prometheus metrics endpoint and a live event-stream websocket.
// It is itself a "framework binding" outside the engine's scope, built the
// way the teacher builds its command-line entrypoints.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
