/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tristendillon/govgen/core/models"
	"github.com/tristendillon/govgen/core/tui"
	"gopkg.in/yaml.v3"
)

var (
	discoverJSON        bool
	discoverInteractive bool
	discoverOpts        outputOptions
)

var discoverCmd = &cobra.Command{
	Use:   "discover <file>",
	Short: "List every entry point of a contract without filtering",
	Long: `Lists every public or entry function of a contract, marking the ones the
strict policy would pick. With --interactive, choose the actions yourself and
generate a governance module from the selection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readSource(args[0])
		if err != nil {
			return err
		}
		an := newAnalyzer()
		result, err := an.DiscoverEntryPoints(src)
		if err != nil {
			return fmt.Errorf("failed to discover entry points in %s: %w", args[0], err)
		}

		if discoverInteractive {
			names, err := tui.Select(result.Module, result.EntryPoints)
			if err != nil {
				return err
			}
			generated, err := an.FromSelection(src, names)
			if err != nil {
				return err
			}
			return emit(generated, discoverOpts)
		}

		if discoverJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		return yaml.NewEncoder(os.Stdout).Encode(newDiscoveryView(result))
	},
}

type entryPointView struct {
	Name       string   `yaml:"name"`
	Visibility string   `yaml:"visibility"`
	Entry      bool     `yaml:"entry,omitempty"`
	Candidate  bool     `yaml:"candidate"`
	Parameters []string `yaml:"parameters,omitempty"`
	Returns    string   `yaml:"returns,omitempty"`
}

type discoveryView struct {
	Module      string           `yaml:"module"`
	EntryPoints []entryPointView `yaml:"entry_points"`
}

func newDiscoveryView(result *models.ParseResult) discoveryView {
	view := discoveryView{Module: result.Module.String()}
	for _, fn := range result.EntryPoints {
		params := make([]string, len(fn.Parameters))
		for i, p := range fn.Parameters {
			params[i] = p.Name + ": " + p.Type
		}
		view.EntryPoints = append(view.EntryPoints, entryPointView{
			Name:       fn.Name,
			Visibility: string(fn.Visibility),
			Entry:      fn.IsEntry,
			Candidate:  fn.GovernanceCandidate,
			Parameters: params,
			Returns:    strings.TrimSpace(fn.ReturnType),
		})
	}
	return view
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "Print entry points as JSON")
	discoverCmd.Flags().BoolVarP(&discoverInteractive, "interactive", "i", false, "Pick actions interactively and generate")
	discoverCmd.Flags().StringVarP(&discoverOpts.out, "out", "o", "", "Output file for --interactive")
	discoverCmd.Flags().BoolVar(&discoverOpts.stdout, "stdout", false, "Print the generated module for --interactive")
}
