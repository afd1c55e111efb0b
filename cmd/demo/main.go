// Command demo runs a short scripted flow against live stores and prints
// what was read back.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"socialmesh/internal/bootstrap"
	"socialmesh/internal/config"
	"socialmesh/internal/seed"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect stores: %v", err)
	}

	err = run(ctx, rt.Coordinator, os.Stdout)
	_ = rt.Close(context.Background())
	if err != nil {
		log.Printf("Demo flow failed: %v", err)
		os.Exit(1)
	}
}

// run executes the demo flow and writes the read-back report to w as JSON.
func run(ctx context.Context, r seed.Reader, w io.Writer) error {
	report, err := seed.DemoFlow(ctx, r)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
