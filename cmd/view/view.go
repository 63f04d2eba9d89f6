// Package view provides one command per report view.
package view

import (
	"fjacquet/cleemy-report/cmd/common"
	"fjacquet/cleemy-report/cmd/root"
	"fjacquet/cleemy-report/internal/views"

	"github.com/spf13/cobra"
)

type spec struct {
	name  string
	short string
	long  string
}

var specs = []spec{
	{
		name:  views.Overview,
		short: "Show every profile with its natures, limit and period",
		long: `Show one row per profile and linked expense nature with the applicable
limit and its period. Profiles without any nature appear with empty cells.`,
	},
	{
		name:  views.Profiles,
		short: "Show the full profile and nature report",
		long: `Show every profile/nature link with the nature status, limit, allowance,
currency, period and blocking flag. The Audit column reports unknown natures
and profiles without natures.`,
	},
	{
		name:  views.Limits,
		short: "Show limits and allowances per profile",
		long: `Show one row per limit or allowance and covered nature. Absolute limits
are blocking, the others only warn.`,
	},
	{
		name:  views.Accounts,
		short: "Show the chart of accounts mappings",
		long: `Show how natures map to costs accounts in each chart of accounts, with
their VAT options. Natures mapped in no chart are listed in the summary.`,
	},
	{
		name:  views.Natures,
		short: "Show which profiles use each nature",
		long:  `Show the profile/nature links ordered by nature, then profile.`,
	},
}

// Commands returns the view commands in menu order.
func Commands() []*cobra.Command {
	cmds := make([]*cobra.Command, len(specs))
	for i, s := range specs {
		cmds[i] = newCommand(s)
	}
	return cmds
}

func newCommand(s spec) *cobra.Command {
	name := s.name
	return &cobra.Command{
		Use:   name,
		Short: s.short,
		Long:  s.long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.RunView(root.GetContainer(), name, common.Request{
				Input:   root.SharedFlags.Input,
				Output:  root.SharedFlags.Output,
				Format:  root.SharedFlags.Format,
				Filters: root.SharedFlags.Filters,
			}, cmd.OutOrStdout())
		},
	}
}
