package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/addfi/internal/facts"
	"github.com/robert-at-pretension-io/addfi/internal/faultinject"
	"github.com/robert-at-pretension-io/addfi/internal/validator"
)

func newFactsCmd(root *rootOptions) *cobra.Command {
	var (
		output  string
		top     string
		modules []string
	)
	cmd := &cobra.Command{
		Use:   "facts <netlist.json> [flags] [-- pass args]",
		Short: "Print the fact tables of a fault injection run without writing the netlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, passArgs := splitArgs(cmd, args)
			if len(positional) != 1 {
				return errors.Errorf("expected exactly one netlist argument, got %d", len(positional))
			}
			input := positional[0]

			cfg, err := loadConfig(root, input)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			passOpts, err := passOptions(cfg, passArgs)
			if err != nil {
				return err
			}
			data, err := readInput(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			d, err := loadDesign(data, cfg, top, log)
			if err != nil {
				return err
			}

			p := faultinject.New(passOpts)
			p.Log = log
			res, err := p.Run(d)
			if err != nil {
				return err
			}

			tables := facts.BuildTables(res)
			if len(modules) > 0 {
				keep := make(map[string]bool, len(modules))
				for _, m := range modules {
					keep[m] = true
				}
				tables = facts.FilterTablesByModules(tables, keep)
			}

			v, err := validator.NewFactsValidator()
			if err != nil {
				return err
			}
			if err := v.Validate(tables); err != nil {
				return err
			}

			if output != "" {
				return writeJSON(output, tables)
			}
			return encodeJSON(cmd.OutOrStdout(), tables)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write facts JSON to file (default: stdout)")
	cmd.Flags().StringVar(&top, "top", "", "tag this module as top before running the pass")
	cmd.Flags().StringSliceVarP(&modules, "module", "m", nil, "only keep rows of these modules")
	return cmd
}
