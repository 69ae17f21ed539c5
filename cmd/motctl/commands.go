package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"melhado-backend/internal/access"
	"melhado-backend/internal/compliance"
	"melhado-backend/internal/models"
)

type loginResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token"`
	User  *models.UserResponse `json:"user"`
}

type statusResponse struct {
	User        *models.UserResponse `json:"user"`
	Permissions []access.Permission  `json:"permissions"`
}

var (
	loginEmail    string
	loginPassword string
	reportText    bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session in the OS keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(loginEmail)
		if email == "" {
			return errors.New("--email is required")
		}
		password := loginPassword
		if password == "" {
			var err error
			if password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
				return err
			}
		}

		var resp loginResponse
		err := newClient(serverURL, "").do(cmd.Context(), http.MethodPost, "/api/auth/login",
			map[string]string{"email": email, "password": password}, &resp)
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return errors.New("invalid email or password")
		}
		if err != nil {
			return err
		}
		if !resp.OK || resp.Token == "" || resp.User == nil {
			return errors.New("login rejected")
		}

		if err := persistSession(session{Server: serverURL, Email: resp.User.Email, Token: resp.Token}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", resp.User.Name, resp.User.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and remove it from the keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession()
		if errors.Is(err, errNotLoggedIn) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
			return nil
		}
		if err != nil {
			return err
		}

		// The local session goes even if the server has already dropped it.
		if err := newClient(s.Server, s.Token).do(cmd.Context(), http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
		if err := clearSession(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user and their permissions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := sessionClient()
		if err != nil {
			return err
		}
		var resp statusResponse
		if err := c.do(cmd.Context(), http.MethodGet, "/api/auth/status", nil, &resp); err != nil {
			return sessionError(err)
		}
		if resp.User == nil {
			return errNotLoggedIn
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s>\nrole: %s\n", resp.User.Name, resp.User.Email, resp.User.Role)
		for _, p := range resp.Permissions {
			for _, a := range p.Actions {
				fmt.Fprintf(out, "  %s\n", access.PermissionLabel(p.Resource, a))
			}
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <inspection-id>",
	Short: "Print an inspection report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := sessionClient()
		if err != nil {
			return err
		}
		format := "markdown"
		if reportText {
			format = "text"
		}
		path := "/api/inspections/" + url.PathEscape(args[0]) + "/report?format=" + format
		body, err := c.raw(cmd.Context(), http.MethodGet, path, nil)
		if err != nil {
			return sessionError(err)
		}
		if reportText {
			_, err = cmd.OutOrStdout().Write(body)
			return err
		}
		return writeMarkdown(cmd.OutOrStdout(), string(body))
	},
}

var expiringCmd = &cobra.Command{
	Use:   "expiring",
	Short: "List documents that have expired or expire soon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := sessionClient()
		if err != nil {
			return err
		}
		var resp struct {
			Report compliance.ExpiryReport `json:"report"`
		}
		path := "/api/reports/" + string(compliance.ReportDocumentExpiry)
		if err := c.do(cmd.Context(), http.MethodGet, path, nil, &resp); err != nil {
			return sessionError(err)
		}
		return printExpiring(cmd.OutOrStdout(), resp.Report)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	reportCmd.Flags().BoolVar(&reportText, "text", false, "print the plain-text report instead of markdown")
}

func sessionClient() (*apiClient, error) {
	s, err := loadSession()
	if err != nil {
		return nil, err
	}
	return newClient(s.Server, s.Token), nil
}

// sessionError turns a 401 into a hint to log in again.
func sessionError(err error) error {
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return errors.New("session expired, run 'motctl login' again")
	}
	return err
}

func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(pw), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printExpiring(w io.Writer, rep compliance.ExpiryReport) error {
	if len(rep.Documents) == 0 {
		_, err := fmt.Fprintf(w, "No documents expire in the next %d days\n", rep.WindowDays)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROPERTY\tDOCUMENT\tTYPE\tEXPIRES\tSTATUS")
	for _, row := range rep.Documents {
		status := fmt.Sprintf("%d days left", row.Days)
		if row.Status == compliance.ExpiryExpired {
			status = fmt.Sprintf("expired %d days ago", row.Days)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Address, row.OriginalName, row.DocumentType,
			row.ExpiryDate.Format("2006-01-02"), status)
	}
	return tw.Flush()
}
