// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "context"

type callerKey struct{}

// WithUserID attaches the identity id of the caller to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey{}, userID)
}

// GetUserID reports the caller attached by WithUserID. An empty id counts as no caller.
func GetUserID(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(callerKey{}).(string)
	return id, id != ""
}
