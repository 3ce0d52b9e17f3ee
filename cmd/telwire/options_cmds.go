package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"telwire/internal/app"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show the configured telnet option policy",
	Run: func(cmd *cobra.Command, args []string) {
		if err := app.Boot(cfgFile, true); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		offered := make(map[byte]bool)
		for _, o := range app.Config.Offers() {
			offered[byte(o.Option.Code)] = true
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tOPTION\tLOCAL\tREMOTE\tOFFER")
		for _, opt := range app.Options.Supported() {
			state := app.Options.Option(opt)
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", byte(opt), opt, yesNo(state.Local()), yesNo(state.Remote()), yesNo(offered[byte(opt)]))
		}
		w.Flush()
	},
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
