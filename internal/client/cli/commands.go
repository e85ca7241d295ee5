package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/sidhilynx/internal/client/config"
	"github.com/dmitrijs2005/sidhilynx/internal/client/keystore"
	"github.com/dmitrijs2005/sidhilynx/internal/client/proof"
	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/prompt"
	"github.com/spf13/cobra"
)

// Options lets tests inject I/O, an HTTP client and the environment. Zero
// values use the process defaults.
type Options struct {
	Out        io.Writer
	In         io.Reader
	HTTPClient *http.Client
	Environ    map[string]string
}

// NewRootCommand builds the client command tree.
func NewRootCommand(opts Options) *cobra.Command {
	a := &App{out: opts.Out, httpClient: opts.HTTPClient, environ: opts.Environ}

	var (
		configPath string
		serverURL  string
		ksPath     string
	)

	cmd := &cobra.Command{
		Use:           "sidhi-client",
		Short:         "Reference device client for the sidhilynx auth service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.out == nil {
				a.out = cmd.OutOrStdout()
			}
			if opts.In != nil {
				a.in = bufio.NewReader(opts.In)
			} else {
				a.in = bufio.NewReader(cmd.InOrStdin())
			}

			cfg, err := config.Load(configPath, a.environ)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("server") {
				cfg.ServerURL = serverURL
			}
			if cmd.Flags().Changed("keystore") {
				cfg.KeystorePath = ksPath
			}
			a.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "JSON config file")
	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "base URL of the auth server")
	cmd.PersistentFlags().StringVar(&ksPath, "keystore", "", "path of the local keystore")

	cmd.AddCommand(
		newLoginCommand(a),
		newRefreshCommand(a),
		newWhoAmICommand(a),
		newLogoutCommand(a),
		newDeviceCommand(a),
	)
	return cmd
}

func newLoginCommand(a *App) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login <identity_handle>",
		Short: "Log in and enroll this device on first use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			password, err := a.readPassword(passwordStdin)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			ks, client, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer ks.Close()

			res, err := client.Login(ctx, args[0], string(password))
			if err != nil {
				return explain(err)
			}
			if err := ks.SaveSession(ctx, keystore.Session{
				IdentityHandle: res.IdentityHandle,
				AccessToken:    res.AccessToken,
				RefreshToken:   res.RefreshToken,
			}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s\n", res.IdentityHandle)
			return nil
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newRefreshCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for a new access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ks, client, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer ks.Close()

			if err := refresh(ctx, ks, client); err != nil {
				return explain(err)
			}
			fmt.Fprintln(a.out, "Access token refreshed")
			return nil
		},
	}
}

func newWhoAmICommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Call the client-bound endpoint with the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ks, client, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer ks.Close()

			s, err := ks.Session(ctx)
			if err != nil {
				return err
			}

			me, err := client.Me(ctx, s.AccessToken)
			// an expired access token is refreshed once and the call retried
			if errors.Is(err, common.ErrInvalidToken) {
				if err := refresh(ctx, ks, client); err != nil {
					return explain(err)
				}
				if s, err = ks.Session(ctx); err != nil {
					return err
				}
				me, err = client.Me(ctx, s.AccessToken)
			}
			if err != nil {
				return explain(err)
			}

			fmt.Fprintf(a.out, "user_id:   %s\nclient_id: %s\nscopes:    %s\n", me.UserID, me.ClientID, strings.Join(me.Scopes, " "))
			return nil
		},
	}
}

func newLogoutCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored refresh token and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ks, client, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer ks.Close()

			s, err := ks.Session(ctx)
			if err != nil {
				return err
			}
			// a token the server no longer knows is as good as revoked
			if err := client.Logout(ctx, s.RefreshToken); err != nil && !errors.Is(err, common.ErrInvalidRefreshToken) {
				return explain(err)
			}
			if err := ks.ClearSession(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func newDeviceCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "Print this device's client id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ks, err := keystore.Open(ctx, a.cfg.KeystorePath)
			if err != nil {
				return err
			}
			defer ks.Close()

			key, err := ks.DeviceKey(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, proof.NewSigner(key, nil).ClientID())
			return nil
		},
	}
}

func (a *App) readPassword(fromStdin bool) ([]byte, error) {
	if fromStdin || !prompt.IsTerminal() {
		line, err := a.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return nil, errors.New("empty password")
		}
		return []byte(line), nil
	}
	return prompt.Password(a.out, "Password")
}
