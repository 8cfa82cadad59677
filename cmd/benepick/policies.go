package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "Manage the welfare policy catalog",
}

var policiesImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import or update policies from a YAML seed file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		n, err := app.ImportPolicies(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d policies into %s\n", n, app.Config.DB.Path)
		return nil
	},
}

var policiesCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored policies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		n, err := app.CountPolicies(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(policiesCmd)
	policiesCmd.AddCommand(policiesImportCmd, policiesCountCmd)
}
