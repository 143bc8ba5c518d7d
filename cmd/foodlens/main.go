package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/foodlens/backend/internal/client"
	"github.com/foodlens/backend/internal/domain"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: foodlens [-server URL] [-json] analyze <image>\n")
	fmt.Fprintf(os.Stderr, "       foodlens [-server URL] [-json] entries\n")
	fmt.Fprintf(os.Stderr, "       foodlens [-server URL] [-json] entry <index>\n")
	flag.PrintDefaults()
}

func main() {
	_ = godotenv.Load()

	defaultServer := os.Getenv("FOODLENS_SERVER")
	if defaultServer == "" {
		defaultServer = client.DefaultBaseURL
	}

	var server string
	var asJSON bool
	var timeout time.Duration

	flag.StringVar(&server, "server", defaultServer, "FoodLens server base URL")
	flag.BoolVar(&asJSON, "json", false, "Print raw JSON instead of formatted text")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "Request timeout")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c := client.New(server)

	switch flag.Arg(0) {
	case "analyze":
		if flag.NArg() != 2 {
			usage()
			os.Exit(2)
		}
		path := flag.Arg(1)
		file, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()

		result, err := c.Analyze(ctx, filepath.Base(path), file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to analyze image. Please try again. (%v)\n", err)
			os.Exit(1)
		}
		printResult(asJSON, result)

	case "entries":
		entries, err := c.Entries(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list entries: %v\n", err)
			os.Exit(1)
		}
		if asJSON {
			printJSON(entries)
			return
		}
		if len(entries) == 0 {
			fmt.Println("No entries recorded yet.")
			return
		}
		for i, entry := range entries {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("[%d]\n", i)
			printResult(false, entry)
		}

	case "entry":
		if flag.NArg() != 2 {
			usage()
			os.Exit(2)
		}
		index, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid entry index %q\n", flag.Arg(1))
			os.Exit(2)
		}
		entry, err := c.Entry(ctx, index)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch entry %d: %v\n", index, err)
			os.Exit(1)
		}
		printResult(asJSON, entry)

	default:
		usage()
		os.Exit(2)
	}
}

func printResult(asJSON bool, result domain.AnalysisResult) {
	if asJSON {
		printJSON(result)
		return
	}
	if _, err := client.Render(result).WriteTo(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to print result: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
		os.Exit(1)
	}
}
