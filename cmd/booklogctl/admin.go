package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/seed"
)

func newCreateAdminCommand(connect connectFunc) *cobra.Command {
	var name, email, role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a staff account",
		Long:  "Creates an administrator, head librarian or librarian. The password is read from the terminal without echo, or from the first line of stdin when it is not a terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			staffRole := models.Role(role)
			if !staffRole.IsStaff() {
				return fmt.Errorf("role must be admin, head_librarian or librarian, got %q", role)
			}

			password, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			e, err := connect(true)
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := seed.CreateStaffAccount(cmd.Context(), e.deps.Repos.Users, seed.StaffAccount{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     staffRole,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s account %s (id %d)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "admin, head_librarian or librarian")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// promptPassword reads the password twice from a terminal, or once from
// piped input.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	f, isFile := in.(*os.File)
	if !isFile || !term.IsTerminal(int(f.Fd())) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	password, err := readHidden(f, out, "Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := readHidden(f, out, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func readHidden(f *os.File, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	raw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
