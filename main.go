package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"books-explorer/explorer"

	"golang.org/x/term"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// readPassword reads a password with masking. When stdin is not a terminal
// it falls back to reading a plain line from sc.
func readPassword(sc *bufio.Scanner, prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", errors.New("no password provided")
		}
		return strings.TrimSpace(sc.Text()), nil
	}
	bytePassword, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

func prompt(sc *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

// runInteractive drives the login screen and, once a session exists, the
// search screen. It returns when the user exits or stdin closes.
func runInteractive(ctx context.Context, ex *explorer.Explorer) error {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Books Explorer")
	var session *explorer.Session
	for {
		if !session.Active() {
			fmt.Println("\nLogin screen. Commands: login, register, exit")
		} else {
			fmt.Printf("\nLogged in as %s. Commands: search, history, logout, exit\n", session.Username)
		}
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))

		if cmd == "exit" {
			fmt.Println("Goodbye!")
			return nil
		}

		if !session.Active() {
			switch cmd {
			case "login":
				session = handleLogin(scanner, ex)
			case "register":
				handleRegister(scanner, ex)
			case "":
			default:
				fmt.Println("Unknown command. Type one of: login, register, exit")
			}
			continue
		}

		switch cmd {
		case "search":
			if err := handleSearch(ctx, scanner, ex, session); err != nil {
				return err
			}
		case "history":
			if err := showHistory(ex, session, explorer.DefaultHistoryLimit); err != nil {
				return err
			}
		case "logout":
			ex.Logout(session)
			session = nil
			fmt.Println("Logged out.")
		case "":
		default:
			fmt.Println("Unknown command. Type one of: search, history, logout, exit")
		}
	}
}

func handleLogin(sc *bufio.Scanner, ex *explorer.Explorer) *explorer.Session {
	username, ok := prompt(sc, "Username: ")
	if !ok {
		return nil
	}
	password, err := readPassword(sc, "Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return nil
	}

	session, err := ex.Login(username, password)
	if err != nil {
		if errors.Is(err, explorer.ErrInvalidCredentials) {
			fmt.Println("Invalid username or password.")
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		return nil
	}
	return session
}

func handleRegister(sc *bufio.Scanner, ex *explorer.Explorer) {
	username, ok := prompt(sc, "New username: ")
	if !ok {
		return
	}
	password, err := readPassword(sc, "New password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	reportRegistration(ex.Register(username, password))
}

func reportRegistration(err error) {
	switch {
	case err == nil:
		fmt.Println("Account created. Now log in.")
	case errors.Is(err, explorer.ErrUserExists):
		fmt.Println("Username exists. Pick another.")
	case errors.Is(err, explorer.ErrEmptyCredentials):
		fmt.Println("Enter username and password.")
	default:
		fmt.Printf("Error creating account: %v\n", err)
	}
}

func handleSearch(ctx context.Context, sc *bufio.Scanner, ex *explorer.Explorer, s *explorer.Session) error {
	query, ok := prompt(sc, "Search (title / author / genre): ")
	if !ok || query == "" {
		return nil
	}

	maxResults := explorer.DefaultMaxResults
	raw, ok := prompt(sc, fmt.Sprintf("Max results [%d-%d, default %d]: ", explorer.MinResults, explorer.MaxResults, explorer.DefaultMaxResults))
	if !ok {
		return nil
	}
	if raw != "" {
		n, err := parseMaxResults(raw)
		if err != nil {
			fmt.Println(err)
			return nil
		}
		maxResults = n
	}

	fmt.Println("Searching Google Books...")
	results, err := ex.Search(ctx, s, query, maxResults)
	if errors.Is(err, explorer.ErrMalformedResponse) {
		fmt.Printf("Search failed: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}
	explorer.RenderResults(os.Stdout, results)
	fmt.Println()
	return showHistory(ex, s, explorer.DefaultHistoryLimit)
}

func showHistory(ex *explorer.Explorer, s *explorer.Session, limit int) error {
	entries, err := ex.History(s, limit)
	if err != nil {
		return err
	}
	explorer.RenderHistory(os.Stdout, entries)
	return nil
}

func parseMaxResults(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < explorer.MinResults || n > explorer.MaxResults {
		return 0, fmt.Errorf("max results must be a number between %d and %d", explorer.MinResults, explorer.MaxResults)
	}
	return n, nil
}
