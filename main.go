// Package main is the entry point for the gcp-auth CLI.
//
// The CLI resolves Google Cloud credentials through the library's fallback
// chain and prints access tokens, in the spirit of
// `gcloud auth print-access-token` but without a gcloud installation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anirudhbiyani/gcp-auth/pkg/gcpauth"
)

const (
	exitError  = 1
	exitNoAuth = 2
)

// defaultScopes:
// - cloud-platform is the base scope to authenticate to GCP.
var defaultScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var noAuth *gcpauth.NoAuthMethodError
		if errors.As(err, &noAuth) {
			os.Exit(exitNoAuth)
		}
		os.Exit(exitError)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "token":
		return cmdToken(ctx, cmdArgs)
	case "describe":
		return cmdDescribe(ctx, cmdArgs)
	case "version":
		return cmdVersion()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return fmt.Errorf("unknown command: %s\nRun 'gcp-auth help' for usage", cmd)
	}
}

type tokenOpts struct {
	credentialsFile string
	scopes          []string
}

func parseTokenOpts(args []string) (*tokenOpts, error) {
	opts := &tokenOpts{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c", "--credentials":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--credentials requires a path argument")
			}
			opts.credentialsFile = args[i+1]
			i++
		case "--scopes":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--scopes requires an argument")
			}
			opts.scopes = strings.Split(args[i+1], ",")
			i++
		default:
			return nil, fmt.Errorf("unknown option: %s", args[i])
		}
	}

	if len(opts.scopes) == 0 {
		opts.scopes = defaultScopes
	}

	return opts, nil
}

func cmdToken(ctx context.Context, args []string) error {
	opts, err := parseTokenOpts(args)
	if err != nil {
		return err
	}

	manager, err := initManager(ctx, opts)
	if err != nil {
		return err
	}

	token, err := manager.GetToken(ctx, opts.scopes...)
	if err != nil {
		return err
	}

	fmt.Println(token.Value)
	return nil
}

func cmdDescribe(ctx context.Context, args []string) error {
	opts, err := parseTokenOpts(args)
	if err != nil {
		return err
	}

	manager, err := initManager(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Source:  %s\n", manager.Kind())
	fmt.Printf("Scopes:  %s\n", strings.Join(opts.scopes, ", "))

	token, err := manager.GetToken(ctx, opts.scopes...)
	if err != nil {
		return err
	}

	fmt.Printf("Expires: %s (in %s)\n",
		token.ExpiresAt.Format(time.RFC3339),
		time.Until(token.ExpiresAt).Round(time.Second))
	return nil
}

func cmdVersion() error {
	fmt.Println("gcp-auth version 0.1.0")
	fmt.Println("  Sources: service_account, metadata, authorized_user")
	return nil
}

func initManager(ctx context.Context, opts *tokenOpts) (*gcpauth.AuthenticationManager, error) {
	var initOpts []gcpauth.Option
	if opts.credentialsFile != "" {
		initOpts = append(initOpts, gcpauth.WithCredentialsFile(opts.credentialsFile))
	}
	return gcpauth.Init(ctx, initOpts...)
}

func printUsage() {
	fmt.Println(`gcp-auth - Google Cloud access tokens from ambient credentials

Usage:
  gcp-auth <command> [options]

Commands:
  token       Print an access token for the resolved credentials
  describe    Show which credential source was selected and token expiry
  version     Show version information
  help        Show this help message

Options:
  -c, --credentials <path>  Service account key file (skips the fallback chain)
  --scopes <s1,s2>          Comma-separated OAuth scopes
                            (default: https://www.googleapis.com/auth/cloud-platform)

Credential resolution order:
  1. --credentials flag (failures are fatal)
  2. GOOGLE_APPLICATION_CREDENTIALS key file (failures are fatal)
  3. GCE/Cloud Run metadata service
  4. gcloud application default credentials

Examples:
  # Print a token using whatever the environment provides
  gcp-auth token

  # Use an explicit service account key with custom scopes
  gcp-auth token -c ./key.json --scopes https://www.googleapis.com/auth/devstorage.read_only

  # Show which source won the fallback chain
  gcp-auth describe`)
}
