package validators

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxServerNameLength = 200
)

var (
	// Server name pattern: must start and end with alphanumeric, can contain dots, underscores and hyphens
	serverNamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?$`)
)

// ValidateServerName validates the name of the metadata server addressed by a client.
// The name becomes a single URL path segment, so it may not contain '/' or whitespace.
// Returns the validated name (trimmed) and an error if validation fails.
//
// Examples of valid names:
//   - cocoMDS1
//   - active-metadata-store
//   - mds_2.prod
//
// Examples of invalid names:
//   - servers/cocoMDS1 (contains a slash)
//   - my server (contains whitespace)
//   - -cocoMDS1 (starts with a dash)
func ValidateServerName(name string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return "", fmt.Errorf("server name cannot be empty")
	}
	if strings.Contains(name, "/") {
		return "", fmt.Errorf("server name cannot contain '/'")
	}
	if len(name) > maxServerNameLength {
		return "", fmt.Errorf("server name exceeds maximum length of %d characters", maxServerNameLength)
	}
	if !serverNamePattern.MatchString(name) {
		return "", fmt.Errorf(
			"server name '%s' is invalid. Name must start and end with alphanumeric characters, "+
				"and may contain dots, underscores, and hyphens in the middle",
			name,
		)
	}

	return name, nil
}
