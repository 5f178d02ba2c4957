package ingest

import (
	"strings"

	"github.com/google/uuid"
)

const callIDPrefix = "c_"

// NewCallID returns a fresh call identifier, e.g. "c_9f3a17c2". The random
// uuid source makes collisions across concurrent runs vanishingly unlikely,
// and the prefix keeps the ids recognizable in logs and artifact paths.
func NewCallID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return callIDPrefix + raw[:8]
}
