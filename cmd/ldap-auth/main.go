// Command ldap-auth is the executable the host application's command_line
// auth provider invokes for each login attempt. Credentials arrive via the
// username and password environment variables; the exit status reports the
// outcome (0 = authenticated) and, on success, a single "name = <value>"
// line on stdout carries the display metadata.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	ldapauth "github.com/stefandmn/ldap-auth"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		sourceName string
		configDir  string
		debug      bool
	)
	exitCode := ldapauth.ExitInternalError

	cmd := &cobra.Command{
		Use:   "ldap-auth",
		Short: "Authenticate a username/password pair against an LDAP directory",
		Long: `ldap-auth verifies the credentials supplied in the username and password
environment variables against an LDAP/LDAPS directory using a two-phase
bind, and reports the outcome through its exit status.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exitCode = resolve(cmd, sourceName, configDir, debug)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceName, "source", string(ldapauth.SelectorAuto),
		"configuration backend: yaml, storage or auto")
	cmd.Flags().StringVar(&configDir, "config-dir", "",
		"host configuration directory (default from HASS_CONFIG, falling back to /config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ldap_auth] %v\n", err)
		return ldapauth.ExitConfigurationError
	}
	return exitCode
}

func resolve(cmd *cobra.Command, sourceName, configDir string, debug bool) int {
	logger := newLogger(debug)

	username, password := credentialsFromEnv()
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "[ldap_auth] missing username/password environment variables")
		return ldapauth.ExitConfigurationError
	}

	source, err := ldapauth.NewSource(ldapauth.Selector(sourceName), configDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ldap_auth] %v\n", err)
		return ldapauth.ExitConfigurationError
	}

	resolver := ldapauth.NewResolver(source, ldapauth.WithLogger(logger))
	res := resolver.Resolve(username, password)
	if !res.Authenticated() {
		// Diagnostics stay on stderr; the provider boundary sees only the
		// exit status.
		fmt.Fprintf(os.Stderr, "[ldap_auth] authentication denied: %s\n", res.Outcome)
	}

	return ldapauth.Emit(cmd.OutOrStdout(), res)
}

// credentialsFromEnv reads the credentials the auth provider passes down.
// Some host setups export the uppercase forms instead.
func credentialsFromEnv() (string, string) {
	username := os.Getenv("username")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	password := os.Getenv("password")
	if password == "" {
		password = os.Getenv("PASSWORD")
	}
	return username, password
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
