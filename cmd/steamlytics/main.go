// Command steamlytics queries the Steamlytics API from the command line and
// prints the result as indented JSON.
//
//	steamlytics -op popular -limit 10
//	steamlytics -op prices -item "AK-47 | Redline (Field-Tested)" -from 2024-06-01 -to 2024-06-15
//	steamlytics -op convert -amount 10.5 -src USD -dst EUR
//
// The API key comes from -key or STEAMLYTICS_API_KEY; a .env file in the
// working directory is loaded first.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may already carry the key.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}
