package cli

import (
	"retention-ltv/pkg/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive calculator: edit rates, years and revenue, see the tables update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.cfg.Scenario()
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(tui.New(a.log, sc), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
