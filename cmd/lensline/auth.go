package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/lensline/internal/cli"
	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/model"
	"github.com/Veraticus/lensline/internal/session"
	"github.com/spf13/cobra"
)

func loginCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the detection service",
		Long: `Sign in with your email and password. The session is kept until you log
out or it expires. When --password is omitted it is read from stdin.`,
		Args: cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			email, _ := cmd.Flags().GetString("email")
			password, err := passwordFlag(cmd)
			if err != nil {
				return err
			}
			<-a.sessionReady
			if err := a.sessions.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			printWelcome(cmd.OutOrStdout(), a.sessions.State())
			return nil
		}),
	}

	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func signupCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, err := passwordFlag(cmd)
			if err != nil {
				return err
			}
			<-a.sessionReady
			if err := a.sessions.Signup(cmd.Context(), name, email, password); err != nil {
				return err
			}
			printWelcome(cmd.OutOrStdout(), a.sessions.State())
			return nil
		}),
	}

	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func logoutCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			<-a.sessionReady
			a.sessions.Logout(cmd.Context())
			printLine(cmd.OutOrStdout(), cli.FormatSuccess("Signed out"))
			return nil
		}),
	}
}

func demoCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Start a local demo session",
		Long:  `Start a demo session that works entirely offline with a sample profile.`,
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			<-a.sessionReady
			a.sessions.DemoLogin(cmd.Context())
			printWelcome(cmd.OutOrStdout(), a.sessions.State())
			return nil
		}),
	}
}

func whoamiCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			<-a.sessionReady
			st := a.sessions.State()
			if !st.IsAuthenticated || st.User == nil {
				printLine(cmd.OutOrStdout(), cli.FormatInfo("Not signed in. Run 'lensline login' or 'lensline demo'."))
				return nil
			}
			printLine(cmd.OutOrStdout(), formatProfile(st))
			return nil
		}),
	}
}

func profileCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View or update your profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			<-a.sessionReady
			st := a.sessions.State()
			if !st.IsAuthenticated || st.User == nil {
				return common.NewUserError("Not signed in", common.ErrNotAuthenticated)
			}
			printLine(cmd.OutOrStdout(), formatProfile(st))
			return nil
		}),
	})

	update := &cobra.Command{
		Use:   "update",
		Short: "Change your name, email or avatar",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			patch := profilePatchFromFlags(cmd)
			if patch.Empty() {
				return fmt.Errorf("%w: nothing to update (use --name, --email or --avatar)", common.ErrInvalidInput)
			}

			<-a.sessionReady
			if !a.sessions.State().IsAuthenticated {
				return common.NewUserError("Not signed in", common.ErrNotAuthenticated)
			}
			if err := a.sessions.UpdateProfile(cmd.Context(), patch); err != nil {
				return err
			}
			printLine(cmd.OutOrStdout(), cli.FormatSuccess("Profile updated"))
			printLine(cmd.OutOrStdout(), formatProfile(a.sessions.State()))
			return nil
		}),
	}
	update.Flags().String("name", "", "new display name")
	update.Flags().String("email", "", "new email")
	update.Flags().String("avatar", "", "new avatar URL")
	cmd.AddCommand(update)

	return cmd
}

// profilePatchFromFlags sets only the fields whose flags were given, so an
// explicit empty value is still sent.
func profilePatchFromFlags(cmd *cobra.Command) model.ProfilePatch {
	var patch model.ProfilePatch
	for name, field := range map[string]**string{
		"name":   &patch.Name,
		"email":  &patch.Email,
		"avatar": &patch.Avatar,
	} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, _ := cmd.Flags().GetString(name)
		*field = &v
	}
	return patch
}

func passwordFlag(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("password") {
		return cmd.Flags().GetString("password")
	}
	printf(cmd.ErrOrStderr(), "Password: ")
	return readLine(cmd.InOrStdin())
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printWelcome(w io.Writer, st session.State) {
	name := "there"
	if st.User != nil && st.User.Name != "" {
		name = st.User.Name
	}
	msg := fmt.Sprintf("Welcome, %s!", name)
	if st.IsDemo() {
		msg += " (demo session)"
	}
	printLine(w, cli.FormatSuccess(msg))
}

func formatProfile(st session.State) string {
	u := st.User
	lines := []string{
		cli.KeyValue("Name", u.Name),
		cli.KeyValue("Email", u.Email),
		cli.KeyValue("Plan", string(u.Plan)),
		cli.KeyValue("Scans today", fmt.Sprintf("%d", u.ScansToday)),
		cli.KeyValue("Total scans", fmt.Sprintf("%d", u.TotalScans)),
	}
	if !u.JoinedAt.IsZero() {
		lines = append(lines, cli.KeyValue("Member since", u.JoinedAt.Local().Format("January 2006")))
	}
	if u.Avatar != nil && *u.Avatar != "" {
		lines = append(lines, cli.KeyValue("Avatar", *u.Avatar))
	}
	switch {
	case st.IsDemo():
		lines = append(lines, cli.KeyValue("Session", "demo"))
	case !st.ExpiresAt.IsZero():
		lines = append(lines, cli.KeyValue("Expires", st.ExpiresAt.Local().Format("2006-01-02 15:04")))
	}
	return cli.RenderBox(cli.LensIcon+" "+u.Name, strings.Join(lines, "\n"))
}
