// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

// DBClientInterface hands out statement builders bound to the pool.
// Each statement commits on its own, there is no cross-table transaction.
type DBClientInterface interface {
	Statement(context.Context) sq.StatementBuilderType
	Ping(context.Context) error
	Close()
}
