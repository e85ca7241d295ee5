package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/prompt"
	"github.com/dmitrijs2005/sidhilynx/internal/server/config"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sidhilynx/internal/server/services"
	"github.com/spf13/cobra"
)

type opener func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error)

type rootOptions struct {
	open opener
	out  io.Writer
	in   io.Reader
}

type env struct {
	cfg  *config.Config
	open opener
	out  io.Writer
	in   *bufio.Reader
}

// withStore opens the configured store for the duration of fn.
func (e *env) withStore(ctx context.Context, fn func(ctx context.Context, m repomanager.RepositoryManager) error) error {
	m, err := e.open(ctx, e.cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer m.Close()
	return fn(ctx, m)
}

func newRootCommand(opts rootOptions) *cobra.Command {
	e := &env{open: opts.open, out: opts.out}

	var (
		configPath string
		dsn        string
	)

	cmd := &cobra.Command{
		Use:           "authctl",
		Short:         "Administration tool for the sidhilynx auth service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if e.out == nil {
				e.out = cmd.OutOrStdout()
			}
			if opts.in != nil {
				e.in = bufio.NewReader(opts.in)
			} else {
				e.in = bufio.NewReader(cmd.InOrStdin())
			}

			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dsn") {
				cfg.DatabaseDSN = dsn
			}
			e.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "server JSON config file")
	cmd.PersistentFlags().StringVarP(&dsn, "dsn", "d", "", "database DSN (overrides config)")

	cmd.AddCommand(newMigrateCommand(e), newUserCommand(e), newClientCommand(e), newTokenCommand(e))
	return cmd
}

func newMigrateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), func(ctx context.Context, m repomanager.RepositoryManager) error {
				if err := m.RunMigrations(ctx); err != nil {
					return err
				}
				fmt.Fprintln(e.out, "migrations applied")
				return nil
			})
		},
	}
}

func newUserCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User provisioning",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		username      string
		email         string
		passwordStdin bool
	)

	add := &cobra.Command{
		Use:   "add",
		Short: "Create an active user with a bcrypt password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username == "" {
				if username, err = prompt.Line(e.in, e.out, "Username"); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = prompt.Line(e.in, e.out, "Email"); err != nil {
					return err
				}
			}
			password, err := e.password(passwordStdin)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			return e.withStore(cmd.Context(), func(ctx context.Context, m repomanager.RepositoryManager) error {
				u, err := services.NewUserService(m, e.cfg.HandleDomain, nil).Register(ctx, username, email, string(password))
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "created %s (%s)\n", u.IdentityHandle, u.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&username, "username", "", "username, normalised into the identity handle")
	add.Flags().StringVar(&email, "email", "", "email address")
	add.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")

	cmd.AddCommand(add)
	return cmd
}

func (e *env) password(fromStdin bool) ([]byte, error) {
	if fromStdin || !prompt.IsTerminal() {
		line, err := e.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
	return prompt.Password(e.out, "Password")
}

func newClientCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Inspect and revoke devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var user string
	list := &cobra.Command{
		Use:   "list",
		Short: "List devices, optionally for one user (id or identity handle)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), func(ctx context.Context, m repomanager.RepositoryManager) error {
				userID, err := resolveUser(ctx, m, user)
				if err != nil {
					return err
				}
				clients, err := services.NewRegistry(m, nil).List(ctx, userID)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CLIENT_ID\tUSER_ID\tSTATUS\tPLATFORM\tLAST_IP\tLAST_SEEN")
				for _, c := range clients {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						c.ClientID, c.UserID, c.Status, c.App.Platform, c.IPLastSeen, c.LastSeenAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().StringVar(&user, "user", "", "user id or identity handle")

	show := &cobra.Command{
		Use:   "show <client_id>",
		Short: "Print one device record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), func(ctx context.Context, m repomanager.RepositoryManager) error {
				c, err := services.NewRegistry(m, nil).Get(ctx, args[0])
				if errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("client %s not found", args[0])
				}
				if err != nil {
					return err
				}
				enc := json.NewEncoder(e.out)
				enc.SetIndent("", "  ")
				return enc.Encode(clientJSON(c))
			})
		},
	}

	revoke := &cobra.Command{
		Use:   "revoke <client_id>",
		Short: "Revoke a device; it can no longer log in or refresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), func(ctx context.Context, m repomanager.RepositoryManager) error {
				err := services.NewRegistry(m, nil).Revoke(ctx, args[0])
				if errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("client %s not found", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "revoked %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, show, revoke)
	return cmd
}

func newTokenCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Refresh token administration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	revokeUser := &cobra.Command{
		Use:   "revoke-user <user>",
		Short: "Delete every refresh token of a user (id or identity handle)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), func(ctx context.Context, m repomanager.RepositoryManager) error {
				userID, err := resolveUser(ctx, m, args[0])
				if err != nil {
					return err
				}
				registry := services.NewRegistry(m, nil)
				n, err := services.NewTokenIssuer(m, registry, e.cfg, nil).RevokeAllForUser(ctx, userID)
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "revoked %d refresh token(s) for %s\n", n, userID)
				return nil
			})
		},
	}

	cmd.AddCommand(revokeUser)
	return cmd
}

// resolveUser accepts a user id or an identity handle. An empty value
// resolves to "" (all users).
func resolveUser(ctx context.Context, m repomanager.RepositoryManager, v string) (string, error) {
	if v == "" {
		return "", nil
	}
	users := m.Repositories().Users

	var (
		u   *models.User
		err error
	)
	if strings.Contains(v, "@") {
		u, err = users.GetByHandle(ctx, strings.ToLower(strings.TrimSpace(v)))
	} else {
		u, err = users.GetByID(ctx, v)
	}
	if errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("user %s not found", v)
	}
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

type clientRecord struct {
	ClientID    string           `json:"client_id"`
	UserID      string           `json:"user_id"`
	PublicKey   string           `json:"public_key"`
	Status      string           `json:"status"`
	Platform    string           `json:"platform"`
	AppID       string           `json:"app_id"`
	AppName     string           `json:"app_name"`
	AppVersion  string           `json:"app_version"`
	IPFirstSeen string           `json:"ip_first_seen"`
	IPLastSeen  string           `json:"ip_last_seen"`
	IPHistory   models.IPHistory `json:"ip_history"`
	CreatedAt   time.Time        `json:"created_at"`
	LastSeenAt  time.Time        `json:"last_seen_at"`
}

func clientJSON(c *models.Client) clientRecord {
	return clientRecord{
		ClientID:    c.ClientID,
		UserID:      c.UserID,
		PublicKey:   c.PublicKey,
		Status:      string(c.Status),
		Platform:    c.App.Platform,
		AppID:       c.App.AppID,
		AppName:     c.App.AppName,
		AppVersion:  c.App.AppVersion,
		IPFirstSeen: c.IPFirstSeen,
		IPLastSeen:  c.IPLastSeen,
		IPHistory:   c.IPHistory,
		CreatedAt:   c.CreatedAt,
		LastSeenAt:  c.LastSeenAt,
	}
}
