package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/temirov/rerun/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	configurationFilePermissions      = 0o600
	configurationDirectoryPermissions = 0o755

	workingDirectoryErrorFormat       = "determine working directory for configuration: %w"
	homeDirectoryErrorFormat          = "resolve home directory for configuration: %w"
	configurationDirectoryErrorFormat = "create configuration directory %s: %w"
	unsupportedTargetErrorFormat      = "unsupported init target %q"
	existingConfigurationErrorFormat  = "%w at %s"
	writeConfigurationErrorFormat     = "write configuration to %s: %w"

	defaultConfigurationTemplate = `# Directory whose immediate entries become rerun-if-changed declarations.
directory: .
# Entry paths to leave out. Each value must match the entry path exactly,
# spelled relative to the same base as directory.
exclude: []
# Optional file listing one exclusion path per line.
exclude_from: ""
# Output format: raw or json.
format: raw
copy: false
strict: false
`
)

// ErrConfigurationExists reports that init found a configuration file and was not forced.
var ErrConfigurationExists = errors.New("configuration file already exists")

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested target
// and returns the written path. Without Force an existing file is left untouched
// and ErrConfigurationExists is returned.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, resolveError := resolveInitDestination(options)
	if resolveError != nil {
		return "", resolveError
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if options.Force {
		openFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	configurationFile, openError := os.OpenFile(destinationPath, openFlags, configurationFilePermissions)
	if openError != nil {
		if errors.Is(openError, fs.ErrExist) {
			return "", fmt.Errorf(existingConfigurationErrorFormat, ErrConfigurationExists, destinationPath)
		}
		return "", fmt.Errorf(writeConfigurationErrorFormat, destinationPath, openError)
	}
	_, writeError := configurationFile.WriteString(defaultConfigurationTemplate)
	closeError := configurationFile.Close()
	if writeError == nil {
		writeError = closeError
	}
	if writeError != nil {
		return "", fmt.Errorf(writeConfigurationErrorFormat, destinationPath, writeError)
	}
	return destinationPath, nil
}

// resolveInitDestination maps the init target to a file path, creating the
// global configuration directory when needed.
func resolveInitDestination(options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			currentDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return "", fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
			}
			workingDirectory = currentDirectory
		}
		return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory, homeError := os.UserHomeDir()
		if homeError != nil {
			return "", fmt.Errorf(homeDirectoryErrorFormat, homeError)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if mkdirError := os.MkdirAll(configurationDirectory, configurationDirectoryPermissions); mkdirError != nil {
			return "", fmt.Errorf(configurationDirectoryErrorFormat, configurationDirectory, mkdirError)
		}
		return filepath.Join(configurationDirectory, utils.ConfigFileName), nil
	default:
		return "", fmt.Errorf(unsupportedTargetErrorFormat, options.Target)
	}
}
