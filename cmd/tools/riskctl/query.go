package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apperrors "lepto-risk-workers/internal/common/errors"
	"lepto-risk-workers/internal/models"
	buildreport "lepto-risk-workers/internal/workers/infrastructure/build-report"
)

func newQueryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <message>",
		Short: "Answer a free-text question, e.g. \"Compare Spain and France in 2015\"",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			eng, closeFn, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := eng.Ask(ctx, strings.Join(args, " "))
			return printResult(opts, result, err)
		},
	}
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "compare <country>...",
		Short: "Compare an explicit list of countries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			eng, closeFn, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			var y *int
			if cmd.Flags().Changed("year") {
				y = models.Int(year)
			}
			result, err := eng.Compare(ctx, args, y)
			return printResult(opts, result, err)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "restrict the comparison to one year")
	return cmd
}

func newCountriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the countries present in the record store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			eng, closeFn, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			countries, err := eng.Countries(ctx)
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(countries)
			}
			for _, c := range countries {
				fmt.Println(c)
			}
			return nil
		},
	}
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "One-line summary for the first country named in message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			eng, closeFn, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := eng.Chat(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(resp)
			}
			fmt.Println(resp.Response)
			return nil
		},
	}
}

// printResult prints the report, or the user-facing text of an engine error.
func printResult(opts *rootOptions, result *models.QueryResult, err error) error {
	if err != nil {
		stdErr, ok := apperrors.As(err)
		if !ok || !apperrors.IsUserFacing(stdErr.Code) {
			return err
		}
		if vocab, isPrompt := stdErr.Metadata["vocabulary"].([]string); isPrompt {
			fmt.Println(buildreport.NoEntityPrompt(vocab))
			return nil
		}
		fmt.Println(stdErr.Message)
		return nil
	}
	if opts.JSON {
		return printJSON(result)
	}
	fmt.Println(result.Report)
	return nil
}
