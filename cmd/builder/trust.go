package main

import (
	"fmt"
	"os"
	"sort"
)

// runTrustYes handles `builder --trust-yes <url>`.
func runTrustYes(a *app, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: --trust-yes requires a URL parameter")
		return 1
	}

	url := args[0]
	added, err := a.trust.Add(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: adding trusted URL: %v\n", err)
		return 1
	}
	if added {
		fmt.Printf("Added trusted URL: %s\n", url)
	} else {
		fmt.Printf("URL already trusted: %s\n", url)
	}
	return 0
}

// runTrustNo handles `builder --trust-no <url>`.
func runTrustNo(a *app, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: --trust-no requires a URL parameter")
		return 1
	}

	url := args[0]
	removed, err := a.trust.Remove(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: removing trusted URL: %v\n", err)
		return 1
	}
	if removed {
		fmt.Printf("Removed trusted URL: %s\n", url)
	} else {
		fmt.Printf("URL not found in trusted list or is built-in: %s\n", url)
	}
	return 0
}

// runTrustList handles `builder --trust-list`.
func runTrustList(a *app) int {
	builtins := make(map[string]bool)
	for _, locator := range a.trust.BuiltinLocators() {
		builtins[locator] = true
	}

	locators := a.trust.AllLocators()
	sort.Strings(locators)

	fmt.Println("Trusted URLs:")
	for _, locator := range locators {
		marker := ""
		if builtins[locator] {
			marker = " (built-in)"
		}
		fmt.Printf("  %s%s\n", locator, marker)
	}
	return 0
}
