package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
)

// CheckConfigCompatibility reports whether a run config written for
// configVersion can be executed by an engine at engineVersion.
//
// Rules:
//   - "main" on either side skips the check
//   - major and minor versions must match
//   - patch versions may differ
//
// Examples:
//   - engine 1.2.0, config 1.2.5 -> OK
//   - engine 1.3.0, config 1.2.0 -> minor mismatch
//   - engine 2.0.0, config 1.2.0 -> major mismatch
func CheckConfigCompatibility(engineVersion, configVersion string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if engineVersion == "main" || configVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if engineSemver.Major() != configSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "major version mismatch: engine is %d.x.x but config requires %d.x.x",
			engineSemver.Major(), configSemver.Major())
	}

	if engineSemver.Minor() != configSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "minor version mismatch: engine is %d.%d.x but config requires %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(),
			configSemver.Major(), configSemver.Minor())
	}

	return nil
}
