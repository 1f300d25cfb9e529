package scaffoldcheck

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "Verify a copier project template by rendering and exercising it"
	MsgRunShort         = "Run verification scenarios against the template"
	MsgListShort        = "List the available scenarios"
	MsgMaterializeShort = "Render the template snapshot into a directory"
	MsgVersionShort     = "Print version information"
	MsgCompletionShort  = "Generate shell completion script"

	// Status messages
	MsgScenarioItem     = "  %-12s %s%s\n"
	MsgScenarioDisabled = " (disabled)"
	MsgMaterialized     = "Rendered %s\n"
	MsgVersionFormat    = "scaffoldcheck version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrScenariosFailed = "%d of %d scenarios failed"
	MsgErrNoCommand       = "no command specified"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig       = "Config file (default: ./scaffoldcheck.toml)"
	MsgFlagTemplate     = "Template root to snapshot"
	MsgFlagTag          = "Version tag placed on the snapshot commit"
	MsgFlagMinArtifacts = "Minimum number of build artifacts"
	MsgFlagFormat       = "Report format: auto, term, text or json"
	MsgFlagData         = "Extra template answer as key=value (repeatable)"
	MsgFlagDataFile     = "YAML or TOML file of extra template answers"
	MsgFlagKeep         = "Keep scenario output directories"
	MsgFlagStream       = "Stream tool output to stderr"
	MsgFlagInitRepo     = "Initialize a git repository in the rendered project"
)

// MsgRootLong is the root command's help text.
const MsgRootLong = `scaffoldcheck snapshots a copier template into a throwaway git repository
tagged 99.99.99, renders it with fixed answers and checks the result:
project metadata, the generated test suite, the package build and the
pre-commit hooks.

Each scenario works on its own freshly rendered project. The template
itself is never modified.`

// MsgRunLong is the run command's help text.
const MsgRunLong = `Run the named scenarios, or the ones enabled in the configuration when
none are named. Scenarios run one after another; a failing scenario does
not stop the rest. The exit status is non-zero when any scenario fails.`
