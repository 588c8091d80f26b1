package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"informe/internal/report"
	"informe/internal/services"
)

func newReportCommand(open Opener) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the text report of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(svc *services.InformeService) error {
				d, err := resolveDate(svc, date)
				if err != nil {
					return err
				}
				text, err := svc.GenerateReport(cmd.Context(), d)
				if err != nil {
					return describeValidation(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	return cmd
}

func newImageCommand(open Opener) *cobra.Command {
	var date, out string

	cmd := &cobra.Command{
		Use:   "image",
		Short: "Write the report of a day as a PNG card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(svc *services.InformeService) error {
				d, err := resolveDate(svc, date)
				if err != nil {
					return err
				}
				b, err := svc.ReportImage(cmd.Context(), d)
				if err != nil {
					return describeValidation(err)
				}
				path := out
				if path == "" {
					path = report.ImageFilename(d)
				}
				if err := writeFile(path, b); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default informe-<date>.png)")
	return cmd
}
