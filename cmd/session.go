package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginUsername    string
	registerUsername string
	registerEmail    string
	passwordStdin    bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, _ []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		username, err := promptLine(cmd, in, "Username: ", loginUsername)
		if err != nil {
			return err
		}
		password, err := readPassword(cmd, in)
		if err != nil {
			return err
		}

		if err := deps.Auth.Login(cmd.Context(), username, password); err != nil {
			return err
		}
		sess, _ := deps.Store.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.Identity.Username)
		return nil
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in with it",
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, _ []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		username, err := promptLine(cmd, in, "Username: ", registerUsername)
		if err != nil {
			return err
		}
		email, err := promptLine(cmd, in, "Email: ", registerEmail)
		if err != nil {
			return err
		}
		password, err := readPassword(cmd, in)
		if err != nil {
			return err
		}

		if err := deps.Auth.Register(cmd.Context(), username, email, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account %s created, you are logged in\n", username)
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, _ []string) error {
		deps.Auth.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is logged in",
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, _ []string) error {
		out := cmd.OutOrStdout()
		sess, ok := deps.Store.Get()
		if !ok {
			fmt.Fprintln(out, "Not logged in")
			return nil
		}

		fmt.Fprintf(out, "Logged in as %s <%s> (id %d)\n", sess.Identity.Username, sess.Identity.Email, sess.Identity.ID)
		fmt.Fprintf(out, "Profile: %s\n", deps.Config.Session.Profile)
		fmt.Fprintf(out, "API: %s\n", deps.Config.API.BaseURL)
		if exp, ok := sess.ExpiresAt(); ok {
			if remaining := time.Until(exp); remaining > 0 {
				fmt.Fprintf(out, "Token expires %s (in %s)\n", exp.Local().Format(time.RFC1123), remaining.Round(time.Minute))
			} else {
				fmt.Fprintf(out, "Token expired %s, the next request will ask you to log in again\n", exp.Local().Format(time.RFC1123))
			}
		}
		return nil
	}),
}

func promptLine(cmd *cobra.Command, in *bufio.Reader, prompt, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo from a terminal and falls back to a plain
// line for pipes and --password-stdin.
func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && !passwordStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(bytePassword), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")

	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "new account username")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "new account email")
	registerCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
}
