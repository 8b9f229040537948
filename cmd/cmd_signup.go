package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/actions"
	"github.com/gaze-network/pool-portal/internal/config"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/provisioning"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

type signupCmdOptions struct {
	Passphrase string
	Email      string
	Name       string
	IP         string
	Usage      entity.ExpectedUsage
	Pools      []string
}

func NewSignupCommand() *cobra.Command {
	opts := &signupCmdOptions{}

	signupCmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a wallet and a node, then optionally apply to pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return signupHandler(opts, cmd, args)
		},
	}

	flags := signupCmd.Flags()
	flags.StringVar(&opts.Passphrase, "passphrase", "", "wallet passphrase")
	flags.StringVar(&opts.Email, "email", "", "contact email")
	flags.StringVar(&opts.Name, "name", "", "display name")
	flags.StringVar(&opts.IP, "ip", "", "public IP address of the node")
	flags.StringVar(&opts.Usage.Reason, "reason", "", "reason for joining")
	flags.StringVar(&opts.Usage.EstimatedSpeed, "speed", "", "estimated connection speed")
	flags.StringVar(&opts.Usage.StorageAmount, "storage", "", "storage amount offered")
	flags.StringVar(&opts.Usage.UptimeStart, "uptime-start", "", "daily uptime start, E.g. `08:00`")
	flags.StringVar(&opts.Usage.UptimeEnd, "uptime-end", "", "daily uptime end, E.g. `20:00`")
	flags.BoolVar(&opts.Usage.AllDayUptime, "all-day", false, "node is online all day")
	flags.StringSliceVar(&opts.Pools, "pools", nil, "pools to apply to once the account exists")
	_ = signupCmd.MarkFlagRequired("passphrase")
	_ = signupCmd.MarkFlagRequired("email")
	_ = signupCmd.MarkFlagRequired("name")

	return signupCmd
}

// setIdentity records email and name and reports every invalid field.
func setIdentity(d *actions.Dispatcher, email, name string) error {
	s := d.SetEmailAddressAndName(strings.TrimSpace(email), name)
	return errors.Join(s.Account.Email.Err, s.Account.Name.Err)
}

func signupHandler(opts *signupCmdOptions, cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	injector := newInjector(config.Load())
	defer injector.Shutdown()

	dispatcher := do.MustInvoke[*actions.Dispatcher](injector)
	workflow := do.MustInvoke[*provisioning.Workflow](injector)
	store := do.MustInvoke[*state.Store](injector)
	out := cmd.OutOrStdout()

	if err := setIdentity(dispatcher, opts.Email, opts.Name); err != nil {
		return errors.WithStack(err)
	}
	if opts.IP != "" {
		dispatcher.SetIPAddress(opts.IP)
	}
	dispatcher.SetExpectedUsage(opts.Usage)
	dispatcher.SetSignupPoolIDs(opts.Pools)

	err := workflow.Run(ctx, opts.Passphrase)
	s := store.GetState()
	printPhases(out, s.Signup.Phases)
	if err != nil {
		var perr *provisioning.Error
		if errors.As(err, &perr) {
			fmt.Fprintf(out, "Signup failed at %s.\n", perr.Phase)
		}
		return errors.WithStack(err)
	}

	fmt.Fprintf(out, "Wallet: %s\nNode:   %s\n", s.Wallet.Address, s.Account.NodeAddress)

	if len(opts.Pools) > 0 {
		if err := workflow.CreateApplications(ctx, opts.Pools); err != nil {
			return errors.WithStack(err)
		}
		fmt.Fprintln(out, provisioning.ApplicationSuccessToast)
	}
	return nil
}

func printPhases(out io.Writer, phases []entity.ProvisioningPhase) {
	for _, phase := range phases {
		fmt.Fprintf(out, "- %s\n", phase)
	}
}

type applyCmdOptions struct {
	Pools []string
	Email string
	Name  string
	Usage entity.ExpectedUsage
}

func NewApplyCommand() *cobra.Command {
	opts := &applyCmdOptions{}

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply to one or more pools in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyHandler(opts, cmd, args)
		},
	}

	flags := applyCmd.Flags()
	flags.StringSliceVar(&opts.Pools, "pools", nil, "pool ids, E.g. `pool-a,pool-b`")
	flags.StringVar(&opts.Email, "email", "", "contact email")
	flags.StringVar(&opts.Name, "name", "", "display name")
	flags.StringVar(&opts.Usage.Reason, "reason", "", "reason for joining")
	flags.StringVar(&opts.Usage.EstimatedSpeed, "speed", "", "estimated connection speed")
	_ = applyCmd.MarkFlagRequired("pools")

	return applyCmd
}

func applyHandler(opts *applyCmdOptions, cmd *cobra.Command, _ []string) error {
	if len(opts.Pools) == 0 {
		return errors.Wrap(errs.ArgumentRequired, "at least one pool is required")
	}

	injector := newInjector(config.Load())
	defer injector.Shutdown()

	dispatcher := do.MustInvoke[*actions.Dispatcher](injector)
	if err := setIdentity(dispatcher, opts.Email, opts.Name); err != nil {
		return errors.WithStack(err)
	}
	dispatcher.SetExpectedUsage(opts.Usage)

	workflow := do.MustInvoke[*provisioning.Workflow](injector)
	if err := workflow.CreateApplications(cmd.Context(), opts.Pools); err != nil {
		var aerr *provisioning.ApplicationError
		if errors.As(err, &aerr) && aerr.Index > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Applied to %s before the failure.\n", strings.Join(opts.Pools[:aerr.Index], ", "))
		}
		return errors.WithStack(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), provisioning.ApplicationSuccessToast)
	return nil
}
