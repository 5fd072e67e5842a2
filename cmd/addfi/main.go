// Command addfi inserts fault injection cells into a Yosys JSON netlist and
// wires their control signals up to a generated fault generator in the top
// module.
//
//	addfi run design.json -o design_fi.json -- -type and -no-comb core/*
//
// Arguments after -- are pass arguments in the syntax of the Yosys pass:
// -no-ff, -no-comb, -no-add-input, -type <xor|and|or> followed by a
// selection of <module> or <module>/<cell> glob patterns.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	verbose    bool
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "addfi",
		Short: "add fault injection signals to a netlist",
		Long: `Insert a combining gate behind every selected flip-flop and combinational
cell of a Yosys JSON netlist and route the fault control signals through the
module hierarchy to a generated figenerator module in the top module.

Configuration is read from the first of:
  1. ./addfi.yaml
  2. ./.addfi.yaml
  3. addfi.yaml next to the input netlist
  4. ~/.config/addfi/config.yaml

Run 'addfi init' to create a default configuration file.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		Run:          func(_ *cobra.Command, _ []string) {},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "configuration file (default: search paths)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json (default: from config)")

	cmd.AddCommand(newInitCmd(), newRunCmd(opts), newFactsCmd(opts))

	if err := cmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	}); err != nil {
		logrus.Panic(err.Error())
	}
	return cmd
}
