package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"informe/internal/core"
	"informe/internal/services"
)

func newSetCommand(open Opener) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "set field=value...",
		Short: "Edit fields of a day's record",
		Long: "Edit fields of a day's record, e.g. to backfill a past day.\n" +
			"Fields: " + strings.Join(core.FormFields, ", ") + ".\n" +
			`Use \n for line breaks in receitasExtras and despesas.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseAssignments(args)
			if err != nil {
				return err
			}
			return withService(cmd, open, func(svc *services.InformeService) error {
				d, err := resolveDate(svc, date)
				if err != nil {
					return err
				}
				form, _, err := svc.FormFor(cmd.Context(), d)
				if err != nil {
					return err
				}
				for _, u := range updates {
					form.Set(u.field, u.value)
				}
				version, err := svc.SaveForm(cmd.Context(), d, form)
				if err != nil {
					return err
				}
				if version > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Salvo %s (versão %d)\n", d.BR(), version)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Salvo %s\n", d.BR())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	return cmd
}

type assignment struct {
	field string
	value string
}

func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		field = strings.TrimSpace(field)
		var probe core.DailyForm
		if !probe.Set(field, "") {
			return nil, fmt.Errorf("unknown field %q", field)
		}
		if field == core.FieldReceitasExtras || field == core.FieldDespesas {
			value = strings.ReplaceAll(value, `\n`, "\n")
		} else {
			value = strings.TrimSpace(value)
		}
		out = append(out, assignment{field: field, value: value})
	}
	return out, nil
}
