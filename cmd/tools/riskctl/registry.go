package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lepto-risk-workers/pkg/registry"
)

func newRegistryCmd(opts *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and edit the activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "configs/activity-registry.json", "path to registry file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadOrDefault(path)
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(reg)
			}
			for _, a := range reg.Activities {
				fmt.Printf("%-20s %-16s %-10s timeout=%s retries=%d\n",
					a.TaskType, a.Category, a.ImplementationStatus, a.Timeout, a.Retries)
			}
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the registry for missing fields and duplicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Println("Registry validation passed.")
			return nil
		},
	}

	var (
		field string
		value string
	)
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Set one field of an activity (status, version, displayName, description, timeout, retries)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Update(args[0], field, value); err != nil {
				return err
			}
			if err := reg.Save(path); err != nil {
				return err
			}
			fmt.Printf("Updated activity %s, field %s to %s\n", args[0], field, value)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&field, "field", "", "field to update")
	updateCmd.Flags().StringVar(&value, "value", "", "new value")
	_ = updateCmd.MarkFlagRequired("field")
	_ = updateCmd.MarkFlagRequired("value")

	checkCmd := &cobra.Command{
		Use:   "check <taskType> <variables.json>",
		Short: "Validate job variables against an activity's input schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadOrDefault(path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if err := reg.ValidateInput(args[0], data); err != nil {
				return err
			}
			fmt.Printf("Variables are valid input for %s.\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, validateCmd, updateCmd, checkCmd)
	cmd.Long = "Task types: " + strings.Join(registry.Default().TaskTypes(), ", ")
	return cmd
}
