// Package main provides the CLI entrypoint for titanfit.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/claude/titanfit/internal/api"
	"github.com/claude/titanfit/internal/config"
	titanmcp "github.com/claude/titanfit/internal/mcp"
	"github.com/claude/titanfit/internal/models"
	"github.com/claude/titanfit/internal/session"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	configPath string
	serverURL  string
	verbose    bool

	loginEmail string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "titanfit",
		Short:         "TitanFit workout history and insights",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to config file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend URL (overrides backend.base_url)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newSignupCmd())
	rootCmd.AddCommand(newDailyCmd())
	rootCmd.AddCommand(newInsightsCmd())
	rootCmd.AddCommand(newPendingCmd())
	rootCmd.AddCommand(newApproveCmd())
	rootCmd.AddCommand(newRejectCmd())
	rootCmd.AddCommand(newMCPCmd())

	return rootCmd
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".titanfit", "config.yaml")
}

// app bundles what every subcommand needs. Close must be called when done.
type app struct {
	cfg    *config.Config
	client *api.Client
	store  *session.Store
	log    *slog.Logger
}

func openApp() (*app, error) {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if serverURL != "" {
		cfg.Backend.BaseURL = serverURL
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	st, err := session.Open(cfg.Client.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	log.Debug("session store opened", "dir", cfg.Client.StateDir, "backend", cfg.Backend.BaseURL)

	return &app{
		cfg:    cfg,
		client: api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout()),
		store:  st,
		log:    log,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logErrf("failed to close session store: %v\n", err)
	}
}

// requireSession loads the saved login or explains how to create one.
func (a *app) requireSession() (*models.AuthSession, error) {
	sess, err := a.store.Load()
	if errors.Is(err, session.ErrSchemaMismatch) {
		return nil, fmt.Errorf("saved session is from an older version, run: titanfit login")
	}
	if errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("not logged in, run: titanfit login")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a member or gym owner",
		Args:  cobra.NoArgs,
		RunE:  runLoginCmd,
	}
	cmd.Flags().StringVar(&loginEmail, "email", "", "account email (prompted when omitted)")
	return cmd
}

func runLoginCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	email := strings.TrimSpace(loginEmail)
	if email == "" {
		if email, err = prompt(in, out, "Email: "); err != nil {
			return err
		}
	}
	if !api.ValidEmail(email) {
		return fmt.Errorf("please enter a valid email address")
	}
	password, err := readPassword(in, out)
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	resp, err := a.client.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "invalid email or password"
		}
		return errors.New(msg)
	}

	sess := models.AuthSession{Role: resp.Role, User: resp.User, Owner: resp.Owner}
	if sess.Role == "" {
		sess.Role = models.RoleMember
		if resp.Owner != nil && resp.User == nil {
			sess.Role = models.RoleGymOwner
		}
	}
	if err := a.store.Save(sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	a.log.Debug("login saved", "role", sess.Role)

	_, err = fmt.Fprintf(out, "Signed in as %s (%s)\n", sessionName(&sess), roleLabel(sess.Role))
	return err
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(out, label); err != nil {
		return "", fmt.Errorf("failed to write output: %w", err)
	}
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword hides input on a terminal and falls back to a plain line read when piped.
func readPassword(in *bufio.Reader, out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(in, out, "Password: ")
	}
	if _, err := fmt.Fprint(out, "Password: "); err != nil {
		return "", fmt.Errorf("failed to write output: %w", err)
	}
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved login",
		Args:  cobra.NoArgs,
		RunE:  runLogoutCmd,
	}
}

func runLogoutCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return err
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE:  runWhoamiCmd,
	}
}

func runWhoamiCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.requireSession()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", sessionName(sess), roleLabel(sess.Role))
	if sess.User != nil && sess.User.Email != "" {
		fmt.Fprintf(out, "email:    %s\n", sess.User.Email)
	}
	if sess.Owner != nil {
		for _, g := range sess.Owner.Gyms {
			fmt.Fprintf(out, "gym:      %s (%s)\n", g.Name, g.GymID)
		}
	}
	fmt.Fprintf(out, "backend:  %s\n", a.cfg.Backend.BaseURL)
	_, err = fmt.Fprintf(out, "since:    %s\n", sess.SavedAt.Local().Format("2006-01-02 15:04"))
	return err
}

func sessionName(sess *models.AuthSession) string {
	if sess.Role == models.RoleGymOwner && sess.Owner != nil {
		if sess.Owner.FullName != "" {
			return sess.Owner.FullName
		}
		return sess.Owner.Email
	}
	return sess.User.DisplayName()
}

func roleLabel(r models.Role) string {
	if r == models.RoleGymOwner {
		return "gym owner"
	}
	return "member"
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve workout tools to an MCP client over stdio",
		Args:  cobra.NoArgs,
		RunE:  runMCPCmd,
	}
}

func runMCPCmd(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// A missing login is not fatal: tools then require an explicit user_id.
	userID, err := a.store.CurrentUserID()
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("failed to load session: %w", err)
	}

	srv := titanmcp.New(a.client, userID, Version, a.log)
	if err := server.ServeStdio(srv); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		_ = err
	}
}
