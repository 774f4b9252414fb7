package util

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// PartialSuffix marks files that are still being written.
const PartialSuffix = ".part"

// SetupInterruptHandler cancels the returned context on the first SIGINT or
// SIGTERM so workers can release their sessions; a second signal exits.
func SetupInterruptHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sig:
		case <-ctx.Done():
			signal.Stop(sig)
			return
		}

		fmt.Fprintln(os.Stderr, "\nInterrupt received. Stopping workers...")
		cancel()

		<-sig
		fmt.Fprintln(os.Stderr, "\nExiting due to interrupt.")
		os.Exit(1)
	}()

	return ctx, func() {
		signal.Stop(sig)
		cancel()
	}
}

// CleanupPartialFiles removes leftovers of an interrupted artifact write.
func CleanupPartialFiles(outputDir string) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return
	}

	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasSuffix(name, PartialSuffix) {
			full := filepath.Join(outputDir, name)

			if err := os.Remove(full); err != nil {
				fmt.Fprintf(os.Stderr, "Error cleaning up %s: %v\n", full, err)
			}
		}
	}
}

func RemoveIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if len(entries) == 0 {
		_ = os.Remove(dir)
	}
}
