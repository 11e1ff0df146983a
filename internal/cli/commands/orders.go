package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/boxoffice-dev/boxoffice/internal/apiclient"
)

// NewOrdersCmd creates the orders command
func NewOrdersCmd(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "orders",
		Aliases: []string{"ls"},
		Short:   "List your orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := LoadEnv(g, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer env.Close()

			return runOrders(cmd.Context(), env)
		},
	}
}

func runOrders(ctx context.Context, env *Env) error {
	if _, err := env.requireSession(); err != nil {
		return err
	}

	orders, err := env.API.ListOrders(ctx)
	if err != nil {
		return err
	}

	if len(orders) == 0 {
		fmt.Fprintln(env.Out, "No orders found.")
		return nil
	}

	w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tSTATUS\tTICKETS\tTOTAL\tPLACED")
	fmt.Fprintln(w, "─────\t──────\t───────\t─────\t──────")

	for _, order := range orders {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			order.ID,
			order.Status,
			len(order.Tickets),
			apiclient.FormatCents(order.TotalCents),
			order.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	return w.Flush()
}
