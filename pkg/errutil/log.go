// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

// Package errutil provides helpers for logging and asserting on
// oops-wrapped errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// Attrs extracts structured logging attributes from an error. For oops
// errors this includes the code, domain, and any attached context; for
// plain errors only the message is returned.
func Attrs(err error) []any {
	attrs := []any{"error", err.Error()}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return attrs
	}
	if code := oopsErr.Code(); code != "" {
		attrs = append(attrs, "code", code)
	}
	if domain := oopsErr.Domain(); domain != "" {
		attrs = append(attrs, "domain", domain)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}

// LogError logs err at error level with the attributes from Attrs.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, Attrs(err)...)
}
