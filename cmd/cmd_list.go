package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/actions"
	"github.com/gaze-network/pool-portal/internal/config"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/poller"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type poolsCmdOptions struct {
	Watch     bool
	Sort      string
	Locations []string
	MinRating float64
}

func NewPoolsCommand() *cobra.Command {
	opts := &poolsCmdOptions{}

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "List storage pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return poolsHandler(opts, cmd, args)
		},
	}

	flags := poolsCmd.Flags()
	flags.BoolVar(&opts.Watch, "watch", false, "refresh the list periodically")
	flags.StringVar(&opts.Sort, "sort", "", "sort column: `name`, `location`, `rating`, `nodeCount` or `price`")
	flags.StringSliceVar(&opts.Locations, "location", nil, "only pools in these locations")
	flags.Float64Var(&opts.MinRating, "min-rating", 0, "only pools rated at least this")

	return poolsCmd
}

func poolsHandler(opts *poolsCmdOptions, cmd *cobra.Command, _ []string) error {
	conf := config.Load()
	injector := newInjector(conf)
	defer injector.Shutdown()

	dispatcher := do.MustInvoke[*actions.Dispatcher](injector)
	if opts.Sort != "" {
		column := state.SortColumn(opts.Sort)
		if !column.IsValid() {
			return errors.Wrapf(errs.InvalidArgument, "unknown sort column %q", opts.Sort)
		}
		dispatcher.HandleSort(column)
	}
	if len(opts.Locations) > 0 {
		dispatcher.SetLocationFilter(opts.Locations)
	}
	dispatcher.SetRatingFilter(opts.MinRating)

	out := cmd.OutOrStdout()
	fetch := func(ctx context.Context) error {
		result := dispatcher.GetAllPools(ctx)
		if result.Failed() {
			return errors.Wrap(result.Err, "can't list pools")
		}
		return printPools(out, dispatcher.Store().GetState())
	}
	return list(cmd.Context(), do.MustInvoke[*poller.Poller](injector), opts.Watch, poller.KeyPools, fetch, conf.Polling.PoolsInterval)
}

type transactionsCmdOptions struct {
	Watch  bool
	Wallet string
	Type   string
}

func NewTransactionsCommand() *cobra.Command {
	opts := &transactionsCmdOptions{}

	transactionsCmd := &cobra.Command{
		Use:   "transactions",
		Short: "List the transactions of a wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return transactionsHandler(opts, cmd, args)
		},
	}

	flags := transactionsCmd.Flags()
	flags.BoolVar(&opts.Watch, "watch", false, "refresh the list periodically")
	flags.StringVar(&opts.Wallet, "wallet", "", "wallet address")
	flags.StringVar(&opts.Type, "type", "", "only transactions of this type: `deposit`, `withdrawal` or `pool_payment`")
	_ = transactionsCmd.MarkFlagRequired("wallet")

	return transactionsCmd
}

func transactionsHandler(opts *transactionsCmdOptions, cmd *cobra.Command, _ []string) error {
	txType := entity.TransactionType(opts.Type)
	if txType != "" && !txType.IsKnown() {
		return errors.Wrapf(errs.InvalidArgument, "unknown transaction type %q", opts.Type)
	}

	conf := config.Load()
	injector := newInjector(conf)
	defer injector.Shutdown()

	dispatcher := do.MustInvoke[*actions.Dispatcher](injector)
	dispatcher.Store().Dispatch(state.WalletAddressSet{Address: opts.Wallet})
	dispatcher.SetTransactionTypeFilter(txType)

	out := cmd.OutOrStdout()
	fetch := func(ctx context.Context) error {
		result := dispatcher.GetAllTransactions(ctx)
		if result.Failed() {
			return errors.Wrap(result.Err, "can't list transactions")
		}
		return printTransactions(out, dispatcher.Store().GetState())
	}
	return list(cmd.Context(), do.MustInvoke[*poller.Poller](injector), opts.Watch, poller.KeyTransactions, fetch, conf.Polling.TransactionsInterval)
}

// list fetches once, or keeps refreshing under key until interrupted.
func list(ctx context.Context, p *poller.Poller, watch bool, key string, fetch poller.FetchFunc, interval time.Duration) error {
	if !watch {
		return errors.WithStack(fetch(ctx))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Start(key, fetch, interval); err != nil {
		return errors.WithStack(err)
	}
	logger.DebugContext(ctx, "Watching list", slogx.String("key", key), slogx.Duration("interval", interval))
	<-ctx.Done()
	p.End(key)
	return nil
}

type balanceCmdOptions struct {
	Wallet string
	Type   string
}

func NewBalanceCommand() *cobra.Command {
	opts := &balanceCmdOptions{}

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the balance of a wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return balanceHandler(opts, cmd, args)
		},
	}

	flags := balanceCmd.Flags()
	flags.StringVar(&opts.Wallet, "wallet", "", "wallet address")
	flags.StringVar(&opts.Type, "type", "", "balance type (default from config)")
	_ = balanceCmd.MarkFlagRequired("wallet")

	return balanceCmd
}

func balanceHandler(opts *balanceCmdOptions, cmd *cobra.Command, _ []string) error {
	conf := config.Load()
	injector := newInjector(conf)
	defer injector.Shutdown()

	dispatcher := do.MustInvoke[*actions.Dispatcher](injector)
	balanceType := lo.Ternary(opts.Type != "", opts.Type, conf.Wallet.BalanceType)
	balance, err := dispatcher.FetchBalance(cmd.Context(), opts.Wallet, balanceType).Unwrap()
	if err != nil {
		return errors.Wrap(err, "can't fetch balance")
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", balance.Value.String(), balance.Type)
	return errors.WithStack(err)
}
