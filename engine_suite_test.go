// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package warden_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2" //nolint:revive
	. "github.com/onsi/gomega"    //nolint:revive
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Warden Engine Suite")
}
