package boundary

import "io"

// ParseForTest exposes parseBoundaries to other packages' tests (region,
// flagengine). This file is not a _test.go file, so the function is part of
// the package's exported API like any other.
func ParseForTest(r io.Reader, strainID string) (Boundaries, error) {
	return parseBoundaries(r, strainID)
}

// ParseWhitelistForTest exposes parseWhitelist to other packages' tests.
func ParseWhitelistForTest(r io.Reader, profileID string) (Whitelist, error) {
	return parseWhitelist(r, profileID)
}
