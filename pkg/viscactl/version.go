package viscactl

import (
	"fmt"

	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/visca"
)

// Version information for the viscactl module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersions returns the versions of all sub-modules.
func ModuleVersions() map[string]string {
	return map[string]string{
		"viscactl": Version,
		"visca":    visca.Version,
		"log":      log.Version,
	}
}

// CompatibilityMatrix returns the minimum compatible version of each sub-module.
func CompatibilityMatrix() map[string]string {
	return map[string]string{
		"viscactl": MinCompatibleVersion,
		"visca":    visca.MinCompatibleVersion,
		"log":      log.MinCompatibleVersion,
	}
}

// validateModuleVersions checks that all module versions are compatible.
func validateModuleVersions() error {
	versions := ModuleVersions()
	for name, min := range CompatibilityMatrix() {
		if !isVersionCompatible(versions[name], min) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, versions[name], min)
		}
	}
	return nil
}

// isVersionCompatible checks if version >= minVersion ("major.minor.patch").
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
