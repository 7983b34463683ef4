package migrate

import (
	"strings"

	"github.com/google/uuid"
)

// ComponentID maps a rich text component identifier into a valid UUID.
// Component ids on the wire are UUIDs already; ids derived from
// codenames (with "_" standing in for "-") are normalized, and anything
// else is hashed deterministically so re-exports produce identical ids.
func ComponentID(raw string) string {
	normalized := strings.ReplaceAll(raw, "_", "-")
	if parsed, err := uuid.Parse(normalized); err == nil {
		return parsed.String()
	}
	return codenameUUID(raw)
}

// codenameUUID is the deterministic UUID v5 hash of a codename.
func codenameUUID(codename string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(codename)).String()
}
