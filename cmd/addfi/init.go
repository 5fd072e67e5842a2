package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/addfi/internal/config"
)

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an addfi.yaml configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := config.FileName
			if len(args) == 1 {
				configPath = args[0]
			}
			return runInit(cmd, configPath, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file without asking")
	return cmd
}

func runInit(cmd *cobra.Command, configPath string, force bool) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Fprintf(out, "Config file %s already exists. Overwrite? [y/N]: ", configPath)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "Created %s\n", configPath)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - Default pass options and selection")
	fmt.Fprintln(out, "  - The top module override")
	fmt.Fprintln(out, "  - Log level and format")
	return nil
}
