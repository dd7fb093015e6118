// Package types defines constants shared across the rerun packages.
package types

const (
	// FormatRaw renders build script declarations.
	FormatRaw = "raw"
	// FormatJSON renders the dependency paths as a JSON array.
	FormatJSON = "json"
)

// IsSupportedFormat reports whether format names a known output format.
func IsSupportedFormat(format string) bool {
	switch format {
	case FormatRaw, FormatJSON:
		return true
	default:
		return false
	}
}
