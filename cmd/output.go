package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/samber/lo"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func printPools(out io.Writer, s state.State) error {
	pools := state.FilteredPools(s)

	w := newTable(out)
	fmt.Fprintln(w, "ADDRESS\tNAME\tLOCATION\tRATING\tNODES\tEARNINGS\tAPPLIED")
	for _, p := range pools {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Address,
			p.NameDisplay(),
			p.LocationDisplay(),
			strconv.FormatFloat(float64(p.Rating), 'f', 1, 64),
			p.NodeCountDisplay(),
			p.EarningsDisplay(),
			lo.Ternary(state.HasApplied(s, p.Address), "yes", ""),
		)
	}
	fmt.Fprintf(w, "\n%d of %d pools\n", len(pools), state.PoolCount(s))
	return errors.WithStack(w.Flush())
}

func printTransactions(out io.Writer, s state.State) error {
	txs := state.FilteredTransactions(s)

	w := newTable(out)
	fmt.Fprintln(w, "HASH\tTIME\tTYPE")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", tx.Hash, tx.TimeDisplay(), tx.Type.Display())
	}
	fmt.Fprintf(w, "\n%d of %d transactions\n", len(txs), len(s.Transactions.Items))
	return errors.WithStack(w.Flush())
}
