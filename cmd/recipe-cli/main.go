package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	jsoniter "github.com/json-iterator/go"

	"recipe-extraction-api/internal/client"
	"recipe-extraction-api/internal/logger"
	"recipe-extraction-api/internal/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	serverFlag := flag.String("server", "http://localhost:8080", "extraction API base URL")
	urlFlag := flag.String("url", "", "recipe page URL")
	userFlag := flag.String("user", "", "user ID to save the recipe under")
	debugFlag := flag.Bool("debug", false, "include per-strategy diagnostics")
	retriesFlag := flag.Int("retries", 3, "retries after the first attempt")
	flag.Parse()

	logger.Setup("warn", "text")

	if *urlFlag == "" || *userFlag == "" {
		fmt.Fprintln(os.Stderr, "Error: -url and -user are required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(*serverFlag)
	c.Policy = retry.Policy{MaxRetries: max(*retriesFlag, 0), BaseDelay: 2 * time.Second}

	resp, err := c.Extract(ctx, *urlFlag, *userFlag, *debugFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Extraction error:", err)
		var ex *client.ExhaustedError
		if errors.As(err, &ex) {
			fmt.Fprintln(os.Stderr, "Suggestion:", ex.Suggestion)
		}
		os.Exit(1)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "JSON marshal error:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
