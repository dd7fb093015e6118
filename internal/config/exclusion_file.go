package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/temirov/rerun/internal/utils"
)

// commentPrefix starts a comment line in an exclusion file.
const commentPrefix = "#"

// LoadExclusionFile reads one exclusion path per line from exclusionFilePath.
// Blank lines and lines starting with # are skipped. Paths are returned verbatim
// apart from surrounding whitespace, in file order and without duplicates.
//
// #nosec G304
func LoadExclusionFile(exclusionFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(exclusionFilePath)
	if openFileError != nil {
		return nil, fmt.Errorf("open exclusion file %s: %w", exclusionFilePath, openFileError)
	}
	defer func() {
		_ = fileHandle.Close()
	}()

	var exclusionPaths []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		exclusionPaths = append(exclusionPaths, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("read exclusion file %s: %w", exclusionFilePath, scanError)
	}
	return utils.DeduplicatePatterns(exclusionPaths), nil
}
