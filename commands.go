package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"books-explorer/explorer"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile  string
	dbPath   string
	logLevel string
}

// open loads configuration, applies flag overrides and opens the explorer.
func (o *rootOptions) open() (*explorer.Explorer, error) {
	cfg, err := explorer.LoadConfig(o.envFile)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	ex, err := explorer.NewExplorer(cfg, explorer.NewLogger(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return ex, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "books-explorer",
		Short:        "Search the Google Books catalog with a local search history",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to a .env file (ignored when missing)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides BOOKS_DB_PATH)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(
		&cobra.Command{
			Use:   "explore",
			Short: "Interactive login and search screens",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runExplore(cmd, opts)
			},
		},
		newRegisterCommand(opts),
		newSearchCommand(opts),
		newHistoryCommand(opts),
	)
	return root
}

func runExplore(cmd *cobra.Command, opts *rootOptions) error {
	ex, err := opts.open()
	if err != nil {
		return err
	}
	defer ex.Close()
	return runInteractive(cmd.Context(), ex)
}

func newRegisterCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := opts.open()
			if err != nil {
				return err
			}
			defer ex.Close()

			password, err := readPassword(bufio.NewScanner(os.Stdin), fmt.Sprintf("Enter password for %s: ", args[0]))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			err = ex.Register(args[0], password)
			reportRegistration(err)
			if errors.Is(err, explorer.ErrUserExists) || errors.Is(err, explorer.ErrEmptyCredentials) {
				return nil
			}
			return err
		},
	}
}

// login prompts for the password of username and opens a session.
func login(ex *explorer.Explorer, username string) (*explorer.Session, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("--user is required")
	}
	password, err := readPassword(bufio.NewScanner(os.Stdin), fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return ex.Login(username, password)
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	var (
		user       string
		maxResults int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog once and log the search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxResults < explorer.MinResults || maxResults > explorer.MaxResults {
				return fmt.Errorf("--max must be between %d and %d", explorer.MinResults, explorer.MaxResults)
			}
			ex, err := opts.open()
			if err != nil {
				return err
			}
			defer ex.Close()

			session, err := login(ex, user)
			if err != nil {
				return err
			}
			defer ex.Logout(session)

			results, err := ex.Search(cmd.Context(), session, strings.Join(args, " "), maxResults)
			if err != nil {
				return err
			}
			explorer.RenderResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "account to search as")
	cmd.Flags().IntVarP(&maxResults, "max", "n", explorer.DefaultMaxResults, "maximum number of results (1-12)")
	return cmd
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var (
		user  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent searches of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := opts.open()
			if err != nil {
				return err
			}
			defer ex.Close()

			session, err := login(ex, user)
			if err != nil {
				return err
			}
			defer ex.Logout(session)

			entries, err := ex.History(session, limit)
			if err != nil {
				return err
			}
			explorer.RenderHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "account whose history to show")
	cmd.Flags().IntVarP(&limit, "limit", "l", explorer.DefaultHistoryLimit, "number of entries")
	return cmd
}
