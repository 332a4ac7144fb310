package objectclient

import (
	"github.com/rgukt-papers/paperhub/internal/core"
)

// The storage contract lives in core so handlers and the indexer can
// take any object store; S3 is the one we ship.
var _ core.ObjectClient = (*S3Client)(nil)
