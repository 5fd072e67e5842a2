package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/addfi/internal/config"
	"github.com/robert-at-pretension-io/addfi/internal/faultinject"
	"github.com/robert-at-pretension-io/addfi/internal/netlist"
	"github.com/robert-at-pretension-io/addfi/internal/validator"
)

// splitArgs separates positional arguments from pass arguments given
// after --.
func splitArgs(cmd *cobra.Command, args []string) (positional, pass []string) {
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		return args[:dash], args[dash:]
	}
	return args, nil
}

func loadConfig(opts *rootOptions, input string) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFile(opts.configPath)
	}
	if input == "-" {
		input = ""
	}
	return config.Load(input)
}

func newLogger(cfg *config.Config, opts *rootOptions, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	if opts.verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	format := cfg.Log.Format
	if opts.logFormat != "" {
		format = opts.logFormat
	}
	switch strings.ToLower(format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
	return log, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return data, errors.Wrap(err, "reading netlist from stdin")
	}
	data, err := os.ReadFile(path)
	return data, errors.Wrap(err, "reading netlist")
}

// loadDesign reads, validates and decodes the netlist, then applies the top
// module override.
func loadDesign(data []byte, cfg *config.Config, top string, log logrus.FieldLogger) (*netlist.Design, error) {
	if cfg.ValidateEnabled() {
		v, err := validator.New()
		if err != nil {
			return nil, err
		}
		if errs := v.ValidationErrors(data); len(errs) > 0 {
			for _, e := range errs {
				log.WithField("violation", e).Error("Netlist does not match the schema")
			}
			return nil, errors.Errorf("netlist schema validation failed with %d violation(s)", len(errs))
		}
	}

	d, err := netlist.ReadJSON(data)
	if err != nil {
		return nil, err
	}

	if top == "" {
		top = cfg.Top
	}
	if top != "" {
		if err := d.SetTop(top); err != nil {
			return nil, errors.Wrap(err, "setting top module")
		}
		log.WithField("module", top).Debug("Top module set")
	}
	return d, nil
}

// passOptions layers the command line pass arguments over the config.
func passOptions(cfg *config.Config, args []string) (faultinject.Options, error) {
	base, err := faultinject.ParseArgs(cfg.PassArgs(), faultinject.DefaultOptions())
	if err != nil {
		return base, errors.Wrap(err, "pass options in config")
	}
	return faultinject.ParseArgs(args, base)
}

func writeJSON(path string, data interface{}) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal json")
	}
	return writeFileAtomic(path, append(b, '\n'))
}

func encodeJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic replaces path through a temporary file in the same
// directory, so readers never see a partially written netlist.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "output dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "temp output file")
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "write output file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "close output file")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "chmod output file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "rename output file")
	}
	return nil
}
