package db

import (
	"github.com/rgukt-papers/paperhub/internal/core"
)

// Both stores satisfy the same persistence contract; which one the
// app wires in depends on whether DATABASE_URL is configured.
var (
	_ core.DbClient    = (*DatabaseClient)(nil)
	_ core.DbClient    = (*MemoryStore)(nil)
	_ core.VectorIndex = (*DatabaseClient)(nil)
)
