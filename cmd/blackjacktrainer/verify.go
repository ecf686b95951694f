package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lox/blackjacktrainer/internal/fair"
)

// VerifyCmd checks an exported proof. Mismatches exit with status 1.
type VerifyCmd struct {
	Proof string `arg:"" default:"-" help:"Proof JSON file, or - for stdin"`
}

func (c *VerifyCmd) Run() error {
	data, err := readInput(c.Proof)
	if err != nil {
		return err
	}
	return verifyProof(os.Stdout, data)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func verifyProof(w io.Writer, data []byte) error {
	var export fair.Export
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("failed to parse proof: %w", err)
	}

	fmt.Fprintln(w, headerStyle.Render("Shoe proof"))
	fmt.Fprintln(w, row("Client seed", export.SeedClient))
	fmt.Fprintln(w, row("System seed", export.SeedSystem))
	fmt.Fprintln(w, row("Nonce", export.Nonce))
	fmt.Fprintln(w, row("Cards", len(export.ShoeOrder)))
	fmt.Fprintln(w, row("Commitment", export.SHA256Commitment))

	if err := fair.Verify(export); err != nil {
		fmt.Fprintln(w, failStyle.Render("✗ "+err.Error()))
		if errors.Is(err, fair.ErrMismatch) {
			return errors.New("proof does not verify")
		}
		return err
	}
	fmt.Fprintln(w, okStyle.Render("✓ shoe order and commitment verified"))
	return nil
}
