// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identities

type DeleteRequest struct {
	TargetUserID string `json:"targetUserId" validate:"required,max=64"`
}

// UpdateRequest changes the email trait, the password or both. Nil fields are
// left untouched.
type UpdateRequest struct {
	TargetUserID string  `json:"targetUserId" validate:"required,max=64"`
	Email        *string `json:"email,omitempty" validate:"required_without=Password,omitempty,email,max=320"`
	Password     *string `json:"password,omitempty" validate:"required_without=Email,omitempty,min=6,max=72"`
}

type ResetFactorsRequest struct {
	TargetUserID string `json:"targetUserId" validate:"required,max=64"`
}

type ResetFactorsResult struct {
	FactorsRemoved int `json:"factorsRemoved"`
}
