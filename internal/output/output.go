// Package output renders directory listings in the supported output formats.
package output

import (
	"encoding/json"
	"fmt"

	"github.com/temirov/rerun/internal/rerun"
	"github.com/temirov/rerun/internal/types"
)

const (
	emptyJSONArray       = "[]\n"
	jsonIndentation      = "  "
	unsupportedFormatMsg = "unsupported output format %q"
)

// RenderListing renders listing in the requested format.
// Raw output is exactly the build script declarations.
func RenderListing(format string, listing rerun.Listing) (string, error) {
	switch format {
	case types.FormatRaw:
		return listing.Declarations(), nil
	case types.FormatJSON:
		return renderJSON(listing.DependencyPaths)
	default:
		return "", fmt.Errorf(unsupportedFormatMsg, format)
	}
}

func renderJSON(dependencyPaths []string) (string, error) {
	if len(dependencyPaths) == 0 {
		return emptyJSONArray, nil
	}
	jsonData, marshalError := json.MarshalIndent(dependencyPaths, "", jsonIndentation)
	if marshalError != nil {
		return "", fmt.Errorf("failed to marshal dependency paths to JSON: %w", marshalError)
	}
	return string(jsonData) + "\n", nil
}
