package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"admin-console-go/internal/admin"
	"admin-console-go/internal/credential"

	"github.com/spf13/cobra"
)

// readSecret prefers the environment, then one line of stdin.
func readSecret(cmd *cobra.Command, envKey, prompt string) (string, error) {
	if v := os.Getenv(envKey); v != "" {
		return v, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long:  "Sign in with email and password. The password is read from ADMIN_PASSWORD or stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			password, err := readSecret(cmd, "ADMIN_PASSWORD", "Password: ")
			if err != nil {
				return err
			}
			user, err := a.svc.Auth.SignIn(cmd.Context(), email, password)
			var pcr *admin.PasswordChangeRequiredError
			if errors.As(err, &pcr) {
				fmt.Fprintf(a.out(cmd), "A new password must be set for %s.\n", pcr.Email)
				fmt.Fprintf(a.out(cmd), "Run: admin-console password reset --token %s\n", pcr.ResetToken)
				return err
			}
			if err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return printJSON(a.out(cmd), user)
			}
			name := email
			if user != nil && user.Name != "" {
				name = user.Name
			}
			success(a.out(cmd), "Logged in as %s", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if err := a.svc.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			success(a.out(cmd), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			snap := a.store.Snapshot()
			exp, hasExp := credential.TokenExpiry(snap.AccessToken)

			if a.opts.jsonOutput {
				out := map[string]any{
					"isAuthenticated": snap.IsAuthenticated,
					"hasRefreshToken": snap.RefreshToken != "",
					"user":            snap.User,
					"backend":         a.store.BackendName(),
				}
				if hasExp {
					out["accessTokenExpiresAt"] = exp
				}
				return printJSON(a.out(cmd), out)
			}
			if !snap.IsAuthenticated {
				return errNotLoggedIn
			}
			table := newTable(a.out(cmd), "Field", "Value")
			if snap.User != nil {
				table.Append([]string{"Email", snap.User.Email})
				table.Append([]string{"Name", snap.User.Name})
				table.Append([]string{"Role", snap.User.Role})
			}
			if hasExp {
				table.Append([]string{"Token expires", exp.Local().Format("2006-01-02 15:04:05")})
			}
			table.Append([]string{"Refresh token", fmt.Sprintf("%t", snap.RefreshToken != "")})
			table.Append([]string{"Storage", a.store.BackendName()})
			table.Render()
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Inspect or renew the session tokens"}
	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if err := a.requireSession(); err != nil {
				return err
			}
			if _, err := a.client.Refresher().Refresh(cmd.Context()); err != nil {
				return err
			}
			success(a.out(cmd), "Access token refreshed")
			return nil
		},
	})
	return cmd
}

func newPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "password", Short: "Change, recover or reset the admin password"}

	cmd.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Change the password of the signed-in admin",
		Long:  "Reads the current password from ADMIN_PASSWORD and the new one from ADMIN_NEW_PASSWORD, or stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if err := a.requireSession(); err != nil {
				return err
			}
			oldPw, err := readSecret(cmd, "ADMIN_PASSWORD", "Current password: ")
			if err != nil {
				return err
			}
			newPw, err := readSecret(cmd, "ADMIN_NEW_PASSWORD", "New password: ")
			if err != nil {
				return err
			}
			if err := a.svc.Auth.UpdatePassword(cmd.Context(), oldPw, newPw); err != nil {
				return err
			}
			success(a.out(cmd), "Password updated")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "forgot <email>",
		Short: "Send a one-time code to the email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			msg, err := a.svc.Auth.ForgotPassword(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			success(a.out(cmd), "%s", firstOr(msg, "Code sent"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resend-otp <email>",
		Short: "Send another one-time code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			msg, err := a.svc.Auth.ResendOTP(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			success(a.out(cmd), "%s", firstOr(msg, "Code sent"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "verify-otp <email> <code>",
		Short: "Verify the one-time code and print the reset token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			token, err := a.svc.Auth.VerifyOTP(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return printJSON(a.out(cmd), map[string]string{"resetToken": token})
			}
			fmt.Fprintln(a.out(cmd), token)
			return nil
		},
	})

	var resetToken, resetEmail string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password using a reset token or email",
		Long:  "Reads the new password from ADMIN_NEW_PASSWORD or stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			newPw, err := readSecret(cmd, "ADMIN_NEW_PASSWORD", "New password: ")
			if err != nil {
				return err
			}
			err = a.svc.Auth.ResetPassword(cmd.Context(), admin.ResetPasswordRequest{
				Token: resetToken, Email: resetEmail, NewPassword: newPw,
			})
			if err != nil {
				return err
			}
			success(a.out(cmd), "Password reset; you can now log in")
			return nil
		},
	}
	reset.Flags().StringVar(&resetToken, "token", "", "Reset token from verify-otp or login")
	reset.Flags().StringVar(&resetEmail, "email", "", "Account email, when no token is available")
	cmd.AddCommand(reset)

	return cmd
}

func firstOr(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
