package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/robert-at-pretension-io/addfi/internal/facts"
	"github.com/robert-at-pretension-io/addfi/internal/faultinject"
	"github.com/robert-at-pretension-io/addfi/internal/netlist"
	"github.com/robert-at-pretension-io/addfi/internal/validator"
)

type runOptions struct {
	output    string
	top       string
	factsPath string
	deltaFrom string
	deltaOut  string
	timing    string
}

func (o *runOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.output, "output", "o", "", "write the modified netlist to file (default: stdout)")
	fs.StringVar(&o.top, "top", "", "tag this module as top before running the pass")
	fs.StringVar(&o.factsPath, "facts", "", "write fact tables JSON to file")
	fs.StringVar(&o.deltaFrom, "delta-from", "", "previous facts JSON to compute delta from")
	fs.StringVar(&o.deltaOut, "delta-out", "", "write delta JSON to file (requires --delta-from)")
	fs.StringVar(&o.timing, "timing", "", "write phase timings as JSONL to file")
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <netlist.json> [flags] [-- pass args]",
		Short: "Run fault injection and write the modified netlist",
		Long: `Run fault injection on a Yosys JSON netlist. Use - to read from stdin.

Pass arguments after -- are applied on top of the pass section of the
configuration:

  -no-ff              do not inject into flip-flops
  -no-comb            do not inject into combinational cells
  -no-add-input       do not add the fi_combined input
  -type <xor|and|or>  combining gate (default xor)
  <module>[/<cell>]   glob patterns selecting where to inject`,
		Example: `  addfi run design.json -o design_fi.json
  addfi run design.json --top soc -- -type and -no-comb cpu*`,
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, passArgs := splitArgs(cmd, args)
			if len(positional) != 1 {
				return errors.Errorf("expected exactly one netlist argument, got %d", len(positional))
			}
			return runRun(cmd, root, opts, positional[0], passArgs)
		},
	}
	opts.addFlags(cmd.Flags())
	return cmd
}

func runRun(cmd *cobra.Command, root *rootOptions, opts *runOptions, input string, passArgs []string) error {
	if (opts.deltaFrom == "") != (opts.deltaOut == "") {
		return errors.New("--delta-from and --delta-out must be used together")
	}

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
	d, err := loadDesign(data, cfg, opts.top, log)
	if err != nil {
		return err
	}

	p := faultinject.New(passOpts)
	p.Log = log
	p.TimingPath = opts.timing
	if p.TimingPath == "" {
		p.TimingPath = cfg.Output.Timing
	}

	log.WithField("input", input).Info("Executing ADDFI pass (add fault injection)")
	res, err := p.Run(d)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"injections":  len(res.Injections),
		"generations": res.Generations,
		"warnings":    len(res.Warnings),
	}).Info("Fault injection done")

	factsPath := opts.factsPath
	if factsPath == "" {
		factsPath = cfg.Output.Facts
	}
	wantFacts := factsPath != "" || opts.deltaOut != ""

	// facts are checked before anything is written
	var (
		tables facts.Tables
		v      *validator.FactsValidator
	)
	if wantFacts {
		tables = facts.BuildTables(res)
		if v, err = validator.NewFactsValidator(); err != nil {
			return err
		}
		if err := v.Validate(tables); err != nil {
			return err
		}
	}

	out, err := netlist.WriteJSON(d)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.output, cmd.OutOrStdout(), out); err != nil {
		return errors.Wrap(err, "writing netlist")
	}

	if !wantFacts {
		return nil
	}
	return writeFacts(v, tables, factsPath, opts.deltaFrom, opts.deltaOut)
}

func writeFacts(v *validator.FactsValidator, tables facts.Tables, path, deltaFrom, deltaOut string) error {
	if path != "" {
		if err := writeJSON(path, tables); err != nil {
			return errors.Wrap(err, "writing facts")
		}
	}

	if deltaOut == "" {
		return nil
	}
	prev, err := readTables(deltaFrom)
	if err != nil {
		return errors.Wrap(err, "reading delta-from")
	}
	delta := facts.ComputeDelta(prev, tables)
	if err := v.ValidateDelta(delta); err != nil {
		return err
	}
	return errors.Wrap(writeJSON(deltaOut, delta), "writing delta")
}

func readTables(path string) (facts.Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return facts.Tables{}, err
	}
	return facts.DecodeTables(data)
}
