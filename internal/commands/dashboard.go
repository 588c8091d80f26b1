package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"informe/internal/core"
	"informe/internal/report"
	"informe/internal/services"
)

func newDashboardCommand(open Opener) *cobra.Command {
	var filtro string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the totals and days of a filter window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := core.ParseWindow(filtro)
			if err != nil {
				return err
			}
			return withService(cmd, open, func(svc *services.InformeService) error {
				d, err := svc.Dashboard(cmd.Context(), w)
				if err != nil {
					return err
				}
				printDashboard(cmd, d)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filtro, "filtro", string(core.WindowLast7), "window: 7dias or mes")
	return cmd
}

func printDashboard(cmd *cobra.Command, d services.Dashboard) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s a %s)\n", d.Window.Label(), d.Start.BR(), d.Today.BR())
	if !d.HasData() {
		fmt.Fprintln(out, "Nenhum registro no período.")
		return
	}

	t := d.Totals
	fmt.Fprintf(out, "Receita: %s\n", report.Reais(t.Receita))
	fmt.Fprintf(out, "Despesas: %s\n", report.Reais(t.Despesas))
	fmt.Fprintf(out, "Lucro: %s\n", report.Reais(t.Resultado))
	fmt.Fprintf(out, "Ticket Médio: %s\n", report.Reais(t.TicketMedio()))
	fmt.Fprintf(out, "Clientes: %s\n", report.Count(t.Clientes))
	fmt.Fprintf(out, "Dias com lucro: %d / %d\n\n", t.DiasPositivos, t.Dias)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Data\tReceita\tDespesas\tResultado\tClientes\t")
	for _, e := range d.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			e.Date.BR(), report.Reais(e.Receita), report.Reais(e.Despesas),
			report.Reais(e.Resultado), report.Count(e.Clientes))
	}
	_ = tw.Flush()
}

func newChartCommand(open Opener) *cobra.Command {
	var filtro, out string

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Write the history chart of a filter window as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := core.ParseWindow(filtro)
			if err != nil {
				return err
			}
			return withService(cmd, open, func(svc *services.InformeService) error {
				b, err := svc.DashboardChart(cmd.Context(), w)
				if errors.Is(err, report.ErrNoHistory) {
					return errors.New("nenhum registro no período")
				}
				if err != nil {
					return err
				}
				path := out
				if path == "" {
					path = "grafico-" + string(w) + ".png"
				}
				if err := writeFile(path, b); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filtro, "filtro", string(core.WindowLast7), "window: 7dias or mes")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default grafico-<filtro>.png)")
	return cmd
}
