package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// CheckSchemaCompatibility checks that a database created with schema
// version stored can be opened by a build writing schema version current.
//
// Compatibility Rules:
//   - Major versions must match exactly
//   - The stored minor version must not be newer than the current one
//   - Patch versions can differ
//
// Examples:
//   - Stored 1.2.0, Current 1.2.0 -> OK (exact match)
//   - Stored 1.1.0, Current 1.2.0 -> OK (older additive schema)
//   - Stored 1.3.0, Current 1.2.0 -> ERROR (written by a newer build)
//   - Stored 2.0.0, Current 1.2.0 -> ERROR (major differs)
func CheckSchemaCompatibility(stored, current string) error {
	storedSemver, err := semver.NewVersion(strings.TrimPrefix(stored, "v"))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeSchemaMismatch, err, "invalid stored schema version '%s'", stored)
	}

	currentSemver, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeSchemaMismatch, err, "invalid schema version '%s'", current)
	}

	if storedSemver.Major() != currentSemver.Major() {
		return errors.Newf(errors.ErrCodeSchemaMismatch, "major version mismatch: database schema is %d.x.x but this build reads %d.x.x",
			storedSemver.Major(), currentSemver.Major())
	}

	if storedSemver.Minor() > currentSemver.Minor() {
		return errors.Newf(errors.ErrCodeSchemaMismatch, "database schema %s is newer than %s; upgrade argo-stocks",
			storedSemver, currentSemver)
	}

	return nil
}
