// Command invoicedraft drives the invoice draft pipeline from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}
	stop()
	if errors.Is(err, errFieldErrors) {
		os.Exit(2)
	}
	fmt.Fprintln(os.Stderr, "invoicedraft:", err)
	os.Exit(1)
}
