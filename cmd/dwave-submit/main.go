// Command dwave-submit is a minimal example binary exercising the client
// end to end: load configuration, prompt for a token if none is
// configured, pick a solver, submit one problem, and print the result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"
	"golang.org/x/term"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/client"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "dwave-submit:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a JSON config file")
	solverName := flag.String("solver", "", "solver name (default: first available)")
	problemFile := flag.String("problem", "", "path to a JSON problem document (default: stdin)")
	timeout := flag.Duration("wait", 2*time.Minute, "how long to wait for a result")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if cfg.Token == "" {
		token, err := promptToken()
		if err != nil {
			return err
		}
		cfg.Token = token
	}

	c, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("constructing client: %w", err)
	}
	defer c.Close()

	solverID := *solverName
	if solverID == "" {
		d, err := c.Solvers().GetSolver(context.Background(), "", nil)
		if err != nil {
			return fmt.Errorf("resolving default solver: %w", err)
		}
		solverID = d.ID()
	}

	problem, err := readProblem(*problemFile)
	if err != nil {
		return err
	}

	f, err := c.Submit(context.Background(), solverID, "ising", problem, nil, "dwave-submit")
	if err != nil {
		return fmt.Errorf("submitting problem: %w", err)
	}

	result, err := f.WaitForResult(*timeout)
	if err != nil {
		return fmt.Errorf("waiting for result: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func promptToken() (string, error) {
	fmt.Print("D-Wave API token: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return string(raw), nil
}

func readProblem(path string) (json.RawMessage, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading problem: %w", err)
	}
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing problem: %w", err)
	}
	return raw, nil
}
