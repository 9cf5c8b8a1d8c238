// Package main is the entry point for the authprobe script runner.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/mglen/authprobe/internal/runner"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	r, err := runner.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 2
	}
	defer r.Close()

	if err := r.LoadFile(opts.Script); err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading script: %v\n", err)
		return 2
	}

	valid, err := r.Verify(opts.User, opts.Password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: verify failed: %v\n", err)
		return 2
	}

	if !valid {
		if msg, ok := r.LastError(); ok && !opts.Quiet {
			fmt.Fprintf(os.Stderr, "invalid (%s)\n", msg)
		} else if !opts.Quiet {
			fmt.Fprintln(os.Stderr, "invalid")
		}
		return 1
	}

	if !opts.Quiet {
		fmt.Println("valid")
	}
	return 0
}

type options struct {
	Script   string
	User     string
	Password string
	Quiet    bool
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.BoolVar(&opts.Quiet, "quiet", false, "Suppress the result line")
	flag.BoolVar(&opts.Quiet, "q", false, "Suppress the result line (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "authprobe - scriptable credential verification\n\n")
		fmt.Fprintf(os.Stderr, "Usage: authprobe [options] <script.lua> <user> [password]\n\n")
		fmt.Fprintf(os.Stderr, "The script must define verify(user, password) -> bool.\n")
		fmt.Fprintf(os.Stderr, "When password is omitted it is read from the terminal.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("authprobe %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) < 2 || len(args) > 3 {
		flag.Usage()
		os.Exit(2)
	}

	opts.Script = args[0]
	opts.User = args[1]
	if len(args) == 3 {
		opts.Password = args[2]
	} else {
		opts.Password = promptPassword()
	}

	return opts
}

func promptPassword() string {
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading password: %v\n", err)
		os.Exit(2)
	}
	return string(pw)
}
