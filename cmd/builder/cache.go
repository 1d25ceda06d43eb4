package main

import (
	"fmt"
	"os"

	"github.com/kstenerud/builder-go/internal/timespec"
)

// runCachePruneOlder handles `builder --cache-prune-older-than <time>`.
func runCachePruneOlder(a *app, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: --cache-prune-older-than requires a time specification (e.g., 5m, 2h, 30d)")
		return 1
	}

	maxAge, err := timespec.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	removed, err := a.cache.PruneOlderThan(maxAge)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: during cache pruning: %v\n", err)
		return 1
	}
	fmt.Printf("Removed %d cached builder(s)\n", removed)
	return 0
}

// runCachePruneBuilder handles `builder --cache-prune-builder [url]`.
// Without a URL it falls back to the project's configured builder_binary.
func runCachePruneBuilder(a *app, args []string) int {
	var locator string
	if len(args) >= 1 {
		locator = args[0]
		fmt.Printf("Removing cache for specified URL: %s\n", locator)
	} else {
		var err error
		locator, err = projectLocator(a)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Removing cache for project's builder_binary: %s\n", locator)
	}

	removed, err := a.cache.PruneEntry(locator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: during builder cache pruning: %v\n", err)
		return 1
	}
	fmt.Printf("Removed %d cached builder(s)\n", removed)
	return 0
}

// printCacheHelp prints help for the maintenance commands.
func printCacheHelp() {
	fmt.Println("Cache Management:")
	fmt.Println("  --cache-prune-older-than <time>  Remove cached builders older than specified time")
	fmt.Println("  --cache-prune-builder [url]      Remove cached builder for specific URL")
	fmt.Println("                                   (uses project's builder_binary if no URL specified)")
	fmt.Println()
	fmt.Println("Trust Management:")
	fmt.Println("  --trust-yes <url>                Add URL to trusted list")
	fmt.Println("  --trust-no <url>                 Remove URL from trusted list")
	fmt.Println("  --trust-list                     List all trusted URLs")
	fmt.Println()
	fmt.Println("Time format: <positive_integer><unit>")
	fmt.Println("  s = seconds, m = minutes, h = hours, d = days")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  builder --cache-prune-older-than 5m   Remove entries older than 5 minutes")
	fmt.Println("  builder --cache-prune-older-than 30d  Remove entries older than 30 days")
	fmt.Println("  builder --cache-prune-builder         Remove cache for project's builder_binary")
	fmt.Println("  builder --trust-yes https://example.com/repo.git")
	fmt.Println("  builder --trust-list")
}
