package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/claude/titanfit/internal/models"
	"github.com/claude/titanfit/internal/owner"
)

var (
	ownerGym     string
	rejectReason string
)

func newPendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List member signups awaiting approval (gym owners)",
		Args:  cobra.NoArgs,
		RunE:  runPendingCmd,
	}
	cmd.Flags().StringVar(&ownerGym, "gym", "", "gym id (default: first gym)")
	return cmd
}

func newApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <request-id>",
		Short: "Approve a pending signup",
		Args:  cobra.ExactArgs(1),
		RunE:  runApproveCmd,
	}
}

func newRejectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reject <request-id>",
		Short: "Reject a pending signup",
		Args:  cobra.ExactArgs(1),
		RunE:  runRejectCmd,
	}
	cmd.Flags().StringVar(&rejectReason, "reason", "", "reason shown to the member (required)")
	return cmd
}

// openConsole builds an owner console for the saved login.
func openConsole(a *app) (*owner.Console, error) {
	sess, err := a.requireSession()
	if err != nil {
		return nil, err
	}
	c, err := owner.NewConsole(a.client, sess, a.log)
	if errors.Is(err, owner.ErrNotOwner) {
		return nil, fmt.Errorf("signed in as a member; gym owner login required")
	}
	if err != nil {
		return nil, err
	}
	if ownerGym != "" && !c.SelectGym(ownerGym) {
		return nil, fmt.Errorf("gym %q is not managed by %s", ownerGym, c.OwnerName())
	}
	return c, nil
}

func runPendingCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := openConsole(a)
	if err != nil {
		return err
	}
	pending, err := c.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load pending signups: %w", err)
	}
	return printPending(cmd.OutOrStdout(), c, a.client.BaseURL(), pending)
}

func printPending(out io.Writer, c *owner.Console, base string, pending []models.PendingSignup) error {
	gymName := c.GymID()
	for _, g := range c.Gyms() {
		if g.GymID == c.GymID() && g.Name != "" {
			gymName = g.Name
		}
	}
	fmt.Fprintf(out, "%s, %s: %d pending\n", c.OwnerName(), gymName, len(pending))
	if len(pending) == 0 {
		return nil
	}
	fmt.Fprintln(out)

	t := newTable("REQUEST", "MEMBER", "EMAIL", "SUBMITTED", "VIDEO")
	for _, p := range pending {
		t.add(p.RequestID, owner.MemberName(p), p.Email, p.CreatedAt, owner.VideoURL(base, p.FaceVideoURL))
	}
	return t.write(out)
}

func runApproveCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := openConsole(a)
	if err != nil {
		return err
	}
	if err := c.Approve(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to approve %s: %w", args[0], err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Approved %s\n", args[0])
	return err
}

func runRejectCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := openConsole(a)
	if err != nil {
		return err
	}
	if err := c.Reject(cmd.Context(), args[0], rejectReason); err != nil {
		if errors.Is(err, owner.ErrReasonRequired) {
			return fmt.Errorf("a rejection reason is required (--reason)")
		}
		return fmt.Errorf("failed to reject %s: %w", args[0], err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Rejected %s\n", args[0])
	return err
}
