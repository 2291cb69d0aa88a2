// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/plugspace/plugspace/pkg/errutil"
)

func TestAssertErrorCode(t *testing.T) {
	err := oops.Code("SYMBOL_NOT_FOUND").Errorf("nope")
	errutil.AssertErrorCode(t, err, "SYMBOL_NOT_FOUND")
}

func TestAssertErrorDomain(t *testing.T) {
	err := oops.In("loader").Errorf("nope")
	errutil.AssertErrorDomain(t, err, "loader")
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.With("locator", "app/plugins:hello").Errorf("nope")
	errutil.AssertErrorContext(t, err, "locator", "app/plugins:hello")
}
