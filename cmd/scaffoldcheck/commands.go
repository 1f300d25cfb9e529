package scaffoldcheck

import (
	"fmt"
	"io"

	"github.com/arthur-debert/scaffoldcheck/internal/version"
	"github.com/arthur-debert/scaffoldcheck/pkg/config"
	"github.com/arthur-debert/scaffoldcheck/pkg/logging"
	"github.com/arthur-debert/scaffoldcheck/pkg/params"
	"github.com/arthur-debert/scaffoldcheck/pkg/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries what commands share. Tests swap the runner.
type app struct {
	verbosity  int
	configPath string

	newRunner func(console io.Writer) runner.CommandRunner
}

func defaultRunner(console io.Writer) runner.CommandRunner {
	r := runner.NewRealRunner()
	// stdout is reserved for the report
	r.Stdout = console
	r.Stderr = console
	return r
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{newRunner: defaultRunner})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "scaffoldcheck",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(a.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", MsgFlagConfig)

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newMaterializeCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// answerFlags are the flags that feed extra template answers.
type answerFlags struct {
	data     []string
	dataFile string
}

func (f *answerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.data, "data", "d", nil, MsgFlagData)
	cmd.Flags().StringVar(&f.dataFile, "data-file", "", MsgFlagDataFile)
}

// extra resolves the data file (flag, then config) and the -d answers,
// with -d winning.
func (f *answerFlags) extra(cfg *config.Config) (params.Params, error) {
	extra := params.Params{}

	dataFile := f.dataFile
	if dataFile == "" {
		dataFile = cfg.Params.DataFile
	}
	if dataFile != "" {
		fromFile, err := params.LoadFile(dataFile)
		if err != nil {
			return nil, err
		}
		extra = extra.Merge(fromFile)
	}

	fromFlags, err := params.Parse(f.data)
	if err != nil {
		return nil, err
	}
	extra = extra.Merge(fromFlags)

	if err := extra.Validate(); err != nil {
		return nil, err
	}
	return extra, nil
}

// templateFlags select and tag the template.
type templateFlags struct {
	template string
	tag      string
}

func (f *templateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.template, "template", "", MsgFlagTemplate)
	cmd.Flags().StringVar(&f.tag, "tag", "", MsgFlagTag)
}

func (f *templateFlags) overrides(cmd *cobra.Command, into map[string]interface{}) {
	if cmd.Flags().Changed("template") {
		into["template.root"] = f.template
	}
	if cmd.Flags().Changed("tag") {
		into["template.tag"] = f.tag
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: MsgCompletionShort,
		Long: `To load completions:

Bash:
  $ source <(scaffoldcheck completion bash)

Zsh:
  $ scaffoldcheck completion zsh > "${fpath[1]}/_scaffoldcheck"

Fish:
  $ scaffoldcheck completion fish | source

PowerShell:
  PS> scaffoldcheck completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
