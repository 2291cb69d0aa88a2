// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package plugin

import (
	"errors"
	"fmt"
)

// Error codes used across the framework for oops-wrapped errors.
const (
	CodeNotFound            = "PLUGIN_NOT_FOUND"
	CodeDidNotLoad          = "PLUGIN_DID_NOT_LOAD"
	CodeUnresolvableSource  = "UNRESOLVABLE_PLUGIN_SOURCE"
	CodeSpecNotSerializable = "SPEC_NOT_SERIALIZABLE"
)

// DisabledError signals that a plugin is intentionally excluded from loading.
// It is raised by filters, by a plugin's own enablement check, or by a
// lifecycle listener vetoing the load. Unlike every other error family, a
// DisabledError returned from a listener hook propagates out of hook dispatch
// so the manager can convert it into the sticky disabled state.
type DisabledError struct {
	Namespace string
	Name      string
	Reason    string
}

func (e *DisabledError) Error() string {
	msg := fmt.Sprintf("plugin %s:%s is disabled", e.Namespace, e.Name)
	if e.Reason != "" {
		msg = fmt.Sprintf("%s, reason: %s", msg, e.Reason)
	}
	return msg
}

// AsDisabled unwraps err as a DisabledError, or returns nil.
func AsDisabled(err error) *DisabledError {
	var disabled *DisabledError
	if errors.As(err, &disabled) {
		return disabled
	}
	return nil
}
