package scaffoldcheck

import (
	"fmt"

	"github.com/arthur-debert/scaffoldcheck/pkg/config"
	"github.com/arthur-debert/scaffoldcheck/pkg/scenarios"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath, nil)
			if err != nil {
				return err
			}
			enabled := make(map[string]bool, len(cfg.Scenarios.Enabled))
			for _, name := range cfg.Scenarios.Enabled {
				enabled[name] = true
			}

			out := cmd.OutOrStdout()
			for _, s := range scenarios.All() {
				suffix := ""
				if !enabled[s.Name()] {
					suffix = MsgScenarioDisabled
				}
				fmt.Fprintf(out, MsgScenarioItem, s.Name(), s.Description(), suffix)
			}
			return nil
		},
	}
}
