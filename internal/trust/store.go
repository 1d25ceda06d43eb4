// Package trust implements the domain allow-list that gates builder
// source acquisition. Trust is granted per domain (host[:port]), never per
// full URL: adding one locator trusts every locator on the same domain.
package trust

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/kstenerud/builder-go/internal/logging"
	"github.com/kstenerud/builder-go/internal/paths"
)

// ErrUntrusted is returned when a locator's domain is not in the trusted set.
var ErrUntrusted = errors.New("untrusted URL domain")

// builtinLocators are always trusted and can never be removed.
var builtinLocators = []string{
	"https://github.com/kstenerud/builder-test.git",
}

const trustFileHeader = "# Trusted URLs for builder\n# One URL per line\n"

// Store manages the trusted-locator list.
type Store struct {
	paths  *paths.Paths
	logger logging.Logger
}

// NewStore creates a trust store over the given paths.
// A nil logger falls back to the no-op logger.
func NewStore(p *paths.Paths, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		paths:  p,
		logger: logger,
	}
}

// BuiltinLocators returns the hard-coded trusted locators.
func (s *Store) BuiltinLocators() []string {
	out := make([]string, len(builtinLocators))
	copy(out, builtinLocators)
	return out
}

// AllLocators returns the built-in locators followed by the user-added
// ones. An unreadable trust file is logged and treated as empty: trust
// maintenance must keep working even when the file is damaged.
func (s *Store) AllLocators() []string {
	locators := s.BuiltinLocators()

	data, err := os.ReadFile(s.paths.TrustFile())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cannot read trusted URLs file", "path", s.paths.TrustFile(), "error", err)
		}
		return locators
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		locators = append(locators, line)
	}

	return locators
}

// Add inserts a locator into the user trust list. It returns false when
// the locator is already present (built-in or user-added).
func (s *Store) Add(locator string) (bool, error) {
	locators := s.AllLocators()
	for _, t := range locators {
		if t == locator {
			return false, nil
		}
	}

	userLocators := s.userLocators(locators)
	userLocators = append(userLocators, locator)

	if err := s.save(userLocators); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes a locator from the user trust list. Built-in locators
// are refused; removing an absent locator returns false.
func (s *Store) Remove(locator string) (bool, error) {
	if s.isBuiltin(locator) {
		s.logger.Warn("cannot remove built-in trusted URL", "url", locator)
		return false, nil
	}

	locators := s.AllLocators()
	found := false
	for _, t := range locators {
		if t == locator {
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	var userLocators []string
	for _, t := range s.userLocators(locators) {
		if t != locator {
			userLocators = append(userLocators, t)
		}
	}

	if err := s.save(userLocators); err != nil {
		return false, err
	}
	return true, nil
}

// Domain extracts the trust domain (lower-cased host[:port]) from a
// locator. Malformed locators yield the empty string.
func Domain(locator string) string {
	parsed, err := url.Parse(locator)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

// IsTrusted reports whether the locator's domain matches the domain of
// any trusted locator.
func (s *Store) IsTrusted(locator string) bool {
	domain := Domain(locator)
	for _, t := range s.AllLocators() {
		if domain == Domain(t) {
			return true
		}
	}
	return false
}

// TrustedDomains returns the sorted, deduplicated set of trusted domains.
func (s *Store) TrustedDomains() []string {
	seen := make(map[string]struct{})
	var domains []string
	for _, t := range s.AllLocators() {
		d := Domain(t)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// Validate fails with ErrUntrusted unless the locator is trusted. This is
// the sole gate before any network or process operation touches a
// locator, so the error carries both the offending domain and the full
// trusted set.
func (s *Store) Validate(locator string) error {
	if s.IsTrusted(locator) {
		return nil
	}

	domain := Domain(locator)
	return fmt.Errorf("%w %q for URL %s (trusted domains: %s)",
		ErrUntrusted, domain, locator, strings.Join(s.TrustedDomains(), ", "))
}

func (s *Store) isBuiltin(locator string) bool {
	for _, b := range builtinLocators {
		if b == locator {
			return true
		}
	}
	return false
}

func (s *Store) userLocators(all []string) []string {
	var user []string
	for _, t := range all {
		if !s.isBuiltin(t) {
			user = append(user, t)
		}
	}
	return user
}

// save rewrites the whole trust file with the user locators. Built-ins
// are never persisted.
func (s *Store) save(userLocators []string) error {
	if err := os.MkdirAll(s.paths.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var b strings.Builder
	b.WriteString(trustFileHeader)
	for _, locator := range userLocators {
		b.WriteString(locator)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(s.paths.TrustFile(), []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write trusted URLs file: %w", err)
	}
	return nil
}
