package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"smartreads/internal/config"
	"smartreads/internal/models"
	"smartreads/internal/service"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage registered accounts",
	}
	cmd.AddCommand(newUsersListCmd(), newUsersAddCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the registered accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			users, err := a.auth.Users(cmd.Context())
			if err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), users)
		},
	}
}

func printUsers(out io.Writer, users []models.User) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.DisplayName(), u.Role, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func newUsersAddCmd() *cobra.Command {
	var in service.SignUpInput
	var role string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an account; the password is read from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.KV.Backend == config.KVBackendMemory {
				a.log.Warn().Msg("kv backend is memory, the account is lost when this command exits")
			}

			in.Role = models.UserRole(role)
			in.TermsAccepted = true
			prompt := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if in.Password, err = prompt.secret("Password: "); err != nil {
				return err
			}
			if in.ConfirmPassword, err = prompt.secret("Confirm password: "); err != nil {
				return err
			}

			user, err := a.auth.SignUp(cmd.Context(), in)
			var verr *service.ValidationError
			switch {
			case errors.As(err, &verr):
				return errors.New(verr.Message)
			case errors.Is(err, service.ErrEmailTaken):
				return errors.New(service.MsgEmailTaken)
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", string(models.UserRoleUser), "user or admin")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// prompter reads secrets without echo on a terminal and falls back to
// plain lines when stdin is piped.
type prompter struct {
	in    io.Reader
	lines *bufio.Reader
	out   io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, lines: bufio.NewReader(in), out: out}
}

func (p *prompter) secret(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := p.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
