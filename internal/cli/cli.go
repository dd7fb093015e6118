// Package cli provides the command line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/rerun/internal/config"
	"github.com/temirov/rerun/internal/output"
	"github.com/temirov/rerun/internal/rerun"
	"github.com/temirov/rerun/internal/services/clipboard"
	"github.com/temirov/rerun/internal/types"
	"github.com/temirov/rerun/internal/utils"
)

const (
	exclusionFlagName     = "exclude"
	exclusionShorthand    = "e"
	exclusionFileFlagName = "exclude-from"
	formatFlagName        = "format"
	copyFlagName          = "copy"
	strictFlagName        = "strict"
	configFlagName        = "config"
	verboseFlagName       = "verbose"
	versionFlagName       = "version"
	globalFlagName        = "global"
	forceFlagName         = "force"
	versionTemplate       = "rerun version: %s\n"
	defaultDirectory      = "."

	rootUse              = "rerun [directory]"
	rootShortDescription = "print rerun-if-changed declarations for a directory"
	rootLongDescription  = `rerun lists the immediate entries of a directory and prints one
cargo:rerun-if-changed declaration per entry, leaving out excluded paths.
Exclusions are compared with each entry path exactly, so spell them relative
to the same base as the directory argument.`
	rootUsageExample = `  # Declare everything in frontend except dependencies and build output
  rerun frontend -e frontend/node_modules -e frontend/artifacts

  # Read exclusions from a file and print JSON
  rerun frontend --exclude-from frontend/.rerunignore --format json`

	initUse              = "init"
	initShortDescription = "write a default configuration file"

	exclusionFlagDescription     = "exclude an entry path (repeatable)"
	exclusionFileFlagDescription = "read exclusion paths from a file, one per line"
	formatFlagDescription        = "output format (raw or json)"
	copyFlagDescription          = "copy the output to the clipboard"
	strictFlagDescription        = "fail when an exclusion matches no entry"
	configFlagDescription        = "configuration file to use instead of " + utils.LocalConfigFileName
	verboseFlagDescription       = "log debug information to standard error"
	versionFlagDescription       = "display application version"
	globalFlagDescription        = "write the global configuration instead of the local one"
	forceFlagDescription         = "overwrite an existing configuration file"

	invalidFormatMessage        = "invalid format value '%s'"
	unmatchedExclusionMessage   = "exclusion matched no entry"
	listingCompletedMessage     = "listed directory"
	configurationWrittenMessage = "configuration written to %s\n"
	copyFailedErrorFormat       = "copy output: %w"
	writeOutputErrorFormat      = "write output: %w"
	loggerInitErrorFormat       = "initialize logger: %w"
)

// errUnmatchedExclusions is returned in strict mode when an exclusion equals no entry.
var errUnmatchedExclusions = errors.New("exclusions matched no entry")

// LoggerFactory builds the logger once the verbosity flag is known.
type LoggerFactory func(verbose bool) (*zap.Logger, error)

// Dependencies supplies the collaborators used by the commands.
type Dependencies struct {
	Copier        clipboard.Copier
	LoggerFactory LoggerFactory
}

// rootOptions stores the values bound to the root command flags.
type rootOptions struct {
	exclusionPaths []string
	exclusionFile  string
	outputFormat   string
	copyOutput     bool
	strict         bool
	configFilePath string
	verbose        bool
	showVersion    bool
}

// listingSettings is the outcome of merging flags, configuration and defaults.
type listingSettings struct {
	directory      string
	exclusionPaths []string
	outputFormat   string
	copyOutput     bool
	strict         bool
}

type application struct {
	dependencies Dependencies
	options      rootOptions
	logger       *zap.Logger
}

// Execute runs the rerun application with the process arguments.
func Execute() error {
	rootCommand := NewRootCommand(Dependencies{
		Copier:        clipboard.NewService(),
		LoggerFactory: utils.NewApplicationLogger,
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	rerunApplication := &application{dependencies: dependencies, logger: zap.NewNop()}

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return rerunApplication.initializeLogger()
		},
		PersistentPostRun: func(command *cobra.Command, arguments []string) {
			_ = rerunApplication.logger.Sync()
		},
		RunE: rerunApplication.runListing,
	}

	flagSet := rootCommand.Flags()
	flagSet.StringArrayVarP(&rerunApplication.options.exclusionPaths, exclusionFlagName, exclusionShorthand, nil, exclusionFlagDescription)
	flagSet.StringVar(&rerunApplication.options.exclusionFile, exclusionFileFlagName, "", exclusionFileFlagDescription)
	flagSet.StringVar(&rerunApplication.options.outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	registerBooleanFlag(flagSet, &rerunApplication.options.copyOutput, copyFlagName, copyFlagDescription)
	registerBooleanFlag(flagSet, &rerunApplication.options.strict, strictFlagName, strictFlagDescription)
	flagSet.BoolVar(&rerunApplication.options.showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&rerunApplication.options.configFilePath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &rerunApplication.options.verbose, verboseFlagName, verboseFlagDescription)

	rootCommand.AddCommand(createInitCommand())
	return rootCommand
}

func (rerunApplication *application) initializeLogger() error {
	if rerunApplication.dependencies.LoggerFactory == nil {
		return nil
	}
	logger, loggerError := rerunApplication.dependencies.LoggerFactory(rerunApplication.options.verbose)
	if loggerError != nil {
		return fmt.Errorf(loggerInitErrorFormat, loggerError)
	}
	rerunApplication.logger = logger
	return nil
}

// runListing prints the declarations for the resolved directory.
func (rerunApplication *application) runListing(command *cobra.Command, arguments []string) error {
	if rerunApplication.options.showVersion {
		_, writeError := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
		return writeError
	}

	configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: rerunApplication.options.configFilePath,
	})
	if configurationError != nil {
		return configurationError
	}
	settings, settingsError := resolveListingSettings(command.Flags(), rerunApplication.options, configuration, arguments)
	if settingsError != nil {
		return settingsError
	}

	listing, listingError := rerun.ListDirectory(settings.directory, settings.exclusionPaths)
	if listingError != nil {
		return listingError
	}
	rerunApplication.logger.Debug(listingCompletedMessage,
		zap.String("directory", settings.directory),
		zap.Int("dependencies", len(listing.DependencyPaths)),
		zap.Int("exclusions", len(settings.exclusionPaths)),
	)
	if reportError := rerunApplication.reportUnmatchedExclusions(settings, listing); reportError != nil {
		return reportError
	}

	rendered, renderError := output.RenderListing(settings.outputFormat, listing)
	if renderError != nil {
		return renderError
	}
	if _, writeError := io.WriteString(command.OutOrStdout(), rendered); writeError != nil {
		return fmt.Errorf(writeOutputErrorFormat, writeError)
	}
	if settings.copyOutput && rerunApplication.dependencies.Copier != nil {
		if copyError := rerunApplication.dependencies.Copier.Copy(rendered); copyError != nil {
			return fmt.Errorf(copyFailedErrorFormat, copyError)
		}
	}
	return nil
}

// reportUnmatchedExclusions warns about exclusions that equal no entry, or fails in strict mode.
func (rerunApplication *application) reportUnmatchedExclusions(settings listingSettings, listing rerun.Listing) error {
	if len(listing.UnmatchedExclusions) == 0 {
		return nil
	}
	if settings.strict {
		return fmt.Errorf("%w in %s: %s", errUnmatchedExclusions, settings.directory, strings.Join(listing.UnmatchedExclusions, ", "))
	}
	for _, exclusion := range listing.UnmatchedExclusions {
		rerunApplication.logger.Warn(unmatchedExclusionMessage,
			zap.String("exclusion", exclusion),
			zap.String("directory", settings.directory),
		)
	}
	return nil
}

// resolveListingSettings merges explicit flags over configuration over defaults.
func resolveListingSettings(flagSet *pflag.FlagSet, options rootOptions, configuration config.ApplicationConfiguration, arguments []string) (listingSettings, error) {
	settings := listingSettings{
		directory:    defaultDirectory,
		outputFormat: types.FormatRaw,
	}
	if len(arguments) > 0 {
		settings.directory = arguments[0]
	} else if configuration.Directory != "" {
		settings.directory = configuration.Directory
	}

	exclusionFile := configuration.ExcludeFrom
	if flagSet.Changed(exclusionFileFlagName) {
		exclusionFile = options.exclusionFile
	}
	exclusionPaths := append([]string{}, configuration.Exclude...)
	if exclusionFile != "" {
		filePaths, loadError := config.LoadExclusionFile(exclusionFile)
		if loadError != nil {
			return listingSettings{}, loadError
		}
		exclusionPaths = append(exclusionPaths, filePaths...)
	}
	exclusionPaths = append(exclusionPaths, options.exclusionPaths...)
	settings.exclusionPaths = utils.DeduplicatePatterns(exclusionPaths)

	if flagSet.Changed(formatFlagName) {
		settings.outputFormat = options.outputFormat
	} else if configuration.Format != "" {
		settings.outputFormat = configuration.Format
	}
	settings.outputFormat = strings.ToLower(strings.TrimSpace(settings.outputFormat))
	if !types.IsSupportedFormat(settings.outputFormat) {
		return listingSettings{}, fmt.Errorf(invalidFormatMessage, settings.outputFormat)
	}

	settings.copyOutput = resolveBoolean(flagSet, copyFlagName, options.copyOutput, configuration.Copy)
	settings.strict = resolveBoolean(flagSet, strictFlagName, options.strict, configuration.Strict)
	return settings, nil
}

func resolveBoolean(flagSet *pflag.FlagSet, flagName string, flagValue bool, configured *bool) bool {
	if flagSet.Changed(flagName) {
		return flagValue
	}
	if configured != nil {
		return *configured
	}
	return false
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var useGlobal bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if useGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target: target,
				Force:  force,
			})
			if initError != nil {
				return initError
			}
			_, writeError := fmt.Fprintf(command.OutOrStdout(), configurationWrittenMessage, writtenPath)
			return writeError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &useGlobal, globalFlagName, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, forceFlagDescription)
	return initCommand
}
