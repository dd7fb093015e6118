// Package rerun lists the immediate entries of a directory and renders them as
// build script rerun-if-changed declarations.
package rerun

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// DeclarationPrefix starts every rendered dependency declaration.
	DeclarationPrefix = "cargo:rerun-if-changed="
	// declarationTerminator ends every rendered dependency declaration.
	declarationTerminator = "\n"

	listingBatchSize = 256

	currentDirectorySegment = "."
	keySeparator            = '/'

	openDirectoryErrorFormat = "open directory %s: %w"
	listDirectoryErrorFormat = "list directory %s: %w"
)

// Listing describes the outcome of scanning one directory.
type Listing struct {
	// DependencyPaths holds the surviving entry paths in listing order.
	DependencyPaths []string
	// UnmatchedExclusions holds the exclusions that equal no listed entry.
	UnmatchedExclusions []string
}

// BuildDependencyList returns one declaration line per immediate entry of
// directory that is not listed in excluded.
//
// Exclusions are compared with the full entry path component by component:
// repeated separators, interior "." segments and trailing separators are
// ignored, while a leading "." and every ".." stay significant. Entries that
// cannot be listed individually and entries whose path is not valid UTF-8 are
// skipped.
// Only a failure to open or list the directory itself is returned as an error.
func BuildDependencyList(directory string, excluded []string) (string, error) {
	listing, listingError := ListDirectory(directory, excluded)
	if listingError != nil {
		return "", listingError
	}
	return listing.Declarations(), nil
}

// ListDirectory scans directory and reports the dependency paths that survive
// the exclusions together with the exclusions that matched nothing.
func ListDirectory(directory string, excluded []string) (Listing, error) {
	directoryHandle, openError := os.Open(directory)
	if openError != nil {
		return Listing{}, fmt.Errorf(openDirectoryErrorFormat, directory, openError)
	}
	defer func() {
		_ = directoryHandle.Close()
	}()

	exclusions := newExclusionSet(excluded)
	var dependencyPaths []string
	entriesSeen := false
	for {
		entryNames, readError := directoryHandle.Readdirnames(listingBatchSize)
		for _, entryName := range entryNames {
			entriesSeen = true
			entryPath := joinEntryPath(directory, entryName)
			if exclusions.matches(entryPath) {
				continue
			}
			if !utf8.ValidString(entryPath) {
				continue
			}
			dependencyPaths = append(dependencyPaths, entryPath)
		}
		if readError == nil {
			continue
		}
		if errors.Is(readError, io.EOF) {
			break
		}
		if !entriesSeen {
			return Listing{}, fmt.Errorf(listDirectoryErrorFormat, directory, readError)
		}
		// The remaining entries are unreachable once the stream failed.
		break
	}

	return Listing{
		DependencyPaths:     dependencyPaths,
		UnmatchedExclusions: exclusions.unmatched(),
	}, nil
}

// Declarations renders the listing as newline-terminated declarations.
// An empty listing renders as the empty string.
func (listing Listing) Declarations() string {
	var builder strings.Builder
	for _, dependencyPath := range listing.DependencyPaths {
		builder.WriteString(FormatDeclaration(dependencyPath))
	}
	return builder.String()
}

// FormatDeclaration renders a single declaration line for path.
func FormatDeclaration(path string) string {
	return DeclarationPrefix + path + declarationTerminator
}

// joinEntryPath appends entryName to directory without cleaning the directory
// part, so the rendered path keeps the caller's spelling.
func joinEntryPath(directory string, entryName string) string {
	if os.IsPathSeparator(directory[len(directory)-1]) {
		return directory + entryName
	}
	return directory + string(os.PathSeparator) + entryName
}

// exclusionSet tracks the exclusions by comparison key and which of them matched.
type exclusionSet struct {
	orderedExclusions []string
	matchedExclusions map[string]bool
}

func newExclusionSet(excluded []string) *exclusionSet {
	set := &exclusionSet{matchedExclusions: make(map[string]bool, len(excluded))}
	for _, exclusion := range excluded {
		exclusionKey := comparisonKey(exclusion)
		if _, known := set.matchedExclusions[exclusionKey]; known {
			continue
		}
		set.matchedExclusions[exclusionKey] = false
		set.orderedExclusions = append(set.orderedExclusions, exclusion)
	}
	return set
}

func (set *exclusionSet) matches(entryPath string) bool {
	entryKey := comparisonKey(entryPath)
	if _, excluded := set.matchedExclusions[entryKey]; !excluded {
		return false
	}
	set.matchedExclusions[entryKey] = true
	return true
}

func (set *exclusionSet) unmatched() []string {
	var unmatchedExclusions []string
	for _, exclusion := range set.orderedExclusions {
		if !set.matchedExclusions[comparisonKey(exclusion)] {
			unmatchedExclusions = append(unmatchedExclusions, exclusion)
		}
	}
	return unmatchedExclusions
}

// comparisonKey reduces path to its components joined by '/'. Empty segments
// and "." segments are dropped except for a leading "." of a relative path;
// ".." is kept as written. A rooted path keeps a leading '/' and any volume
// name is kept verbatim.
func comparisonKey(path string) string {
	volumeName := filepath.VolumeName(path)
	remainder := path[len(volumeName):]
	isRooted := remainder != "" && os.IsPathSeparator(remainder[0])
	segments := strings.FieldsFunc(remainder, func(character rune) bool {
		return character < utf8.RuneSelf && os.IsPathSeparator(uint8(character))
	})

	components := make([]string, 0, len(segments))
	for segmentIndex, segment := range segments {
		if segment == currentDirectorySegment && (isRooted || segmentIndex > 0) {
			continue
		}
		components = append(components, segment)
	}

	var keyBuilder strings.Builder
	keyBuilder.WriteString(volumeName)
	if isRooted {
		keyBuilder.WriteByte(keySeparator)
	}
	keyBuilder.WriteString(strings.Join(components, string(keySeparator)))
	return keyBuilder.String()
}
