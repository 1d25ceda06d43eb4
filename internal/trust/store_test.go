package trust

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/kstenerud/builder-go/internal/logging"
	"github.com/kstenerud/builder-go/internal/paths"
)

const builtinURL = "https://github.com/kstenerud/builder-test.git"

func newTestStore(t *testing.T) *Store {
	t.Helper()

	p, err := paths.New(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("paths.New: %v", err)
	}
	return NewStore(p, logging.Nop())
}

func TestDomain(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		want    string
	}{
		{name: "https_url", locator: "https://github.com/user/repo.git", want: "github.com"},
		{name: "with_port", locator: "https://example.com:8443/r.git", want: "example.com:8443"},
		{name: "mixed_case_host", locator: "https://GitHub.COM/user/repo.git", want: "github.com"},
		{name: "local_path", locator: "/tmp/some/dir", want: ""},
		{name: "file_url", locator: "file:///tmp/some/dir", want: ""},
		{name: "malformed", locator: "https://exa mple.com/x", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Domain(tt.locator); got != tt.want {
				t.Errorf("Domain(%q) = %q, want %q", tt.locator, got, tt.want)
			}
		})
	}
}

func TestBuiltinAlwaysTrusted(t *testing.T) {
	s := newTestStore(t)

	if !s.IsTrusted(builtinURL) {
		t.Error("built-in URL is not trusted")
	}

	// Same domain, different path.
	if !s.IsTrusted("https://github.com/someone-else/other.git") {
		t.Error("same-domain URL is not trusted")
	}

	if s.IsTrusted("https://example.com/repo.git") {
		t.Error("unknown domain is trusted")
	}
}

func TestAddAndPersist(t *testing.T) {
	s := newTestStore(t)
	url := "https://newtrusted.com/repo.git"

	added, err := s.Add(url)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !added {
		t.Fatal("Add returned false for a new URL")
	}

	if !s.IsTrusted("https://newtrusted.com/other/path.zip") {
		t.Error("same-domain URL not trusted after Add")
	}

	// Duplicate add is a no-op.
	added, err = s.Add(url)
	if err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	if added {
		t.Error("Add returned true for a duplicate URL")
	}

	// Built-ins never reach the file.
	data, err := os.ReadFile(s.paths.TrustFile())
	if err != nil {
		t.Fatalf("read trust file: %v", err)
	}
	if strings.Contains(string(data), builtinURL) {
		t.Error("built-in URL was persisted to the trust file")
	}
	if !strings.Contains(string(data), url) {
		t.Error("added URL missing from the trust file")
	}
}

func TestAddBuiltinIsNoop(t *testing.T) {
	s := newTestStore(t)

	added, err := s.Add(builtinURL)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added {
		t.Error("Add returned true for a built-in URL")
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	url := "https://trustme.example/repo.git"

	if _, err := s.Add(url); err != nil {
		t.Fatalf("Add: %v", err)
	}

	removed, err := s.Remove(url)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("Remove returned false for a user-added URL")
	}
	if s.IsTrusted(url) {
		t.Error("URL still trusted after Remove")
	}
}

func TestRemoveBuiltinRefused(t *testing.T) {
	s := newTestStore(t)

	removed, err := s.Remove(builtinURL)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed {
		t.Error("Remove returned true for a built-in URL")
	}
	if !s.IsTrusted(builtinURL) {
		t.Error("built-in URL lost trust after refused removal")
	}
}

func TestRemoveAbsent(t *testing.T) {
	s := newTestStore(t)

	removed, err := s.Remove("https://nonexistent.com/repo.git")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed {
		t.Error("Remove returned true for an absent URL")
	}
}

func TestAllLocatorsSkipsCommentsAndBlanks(t *testing.T) {
	s := newTestStore(t)

	if err := os.MkdirAll(s.paths.ConfigDir(), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "# header\n\nhttps://a.example/one.git\n  \nhttps://b.example/two.git\n"
	if err := os.WriteFile(s.paths.TrustFile(), []byte(content), 0644); err != nil {
		t.Fatalf("write trust file: %v", err)
	}

	locators := s.AllLocators()

	want := []string{builtinURL, "https://a.example/one.git", "https://b.example/two.git"}
	if len(locators) != len(want) {
		t.Fatalf("AllLocators = %v, want %v", locators, want)
	}
	for i := range want {
		if locators[i] != want[i] {
			t.Errorf("AllLocators[%d] = %q, want %q", i, locators[i], want[i])
		}
	}
}

func TestAllLocatorsUnreadableFileNonFatal(t *testing.T) {
	s := newTestStore(t)

	// A directory where the file should be makes reads fail without an
	// IsNotExist error.
	if err := os.MkdirAll(s.paths.TrustFile(), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	locators := s.AllLocators()
	if len(locators) != len(builtinLocators) {
		t.Errorf("AllLocators = %v, want built-ins only", locators)
	}
}

func TestValidate(t *testing.T) {
	s := newTestStore(t)

	if err := s.Validate(builtinURL); err != nil {
		t.Errorf("Validate(built-in) = %v, want nil", err)
	}

	err := s.Validate("https://example.com/test.zip")
	if !errors.Is(err, ErrUntrusted) {
		t.Fatalf("Validate error = %v, want ErrUntrusted", err)
	}
	if !strings.Contains(err.Error(), "example.com") {
		t.Errorf("error %q does not name the offending domain", err)
	}
	if !strings.Contains(err.Error(), "github.com") {
		t.Errorf("error %q does not list the trusted domains", err)
	}
}

func TestTrustedDomainsSortedUnique(t *testing.T) {
	s := newTestStore(t)

	for _, url := range []string{
		"https://zeta.example/a.git",
		"https://alpha.example/b.git",
		"https://zeta.example/c.zip",
	} {
		if _, err := s.Add(url); err != nil {
			t.Fatalf("Add(%q): %v", url, err)
		}
	}

	domains := s.TrustedDomains()
	want := []string{"alpha.example", "github.com", "zeta.example"}
	if len(domains) != len(want) {
		t.Fatalf("TrustedDomains = %v, want %v", domains, want)
	}
	for i := range want {
		if domains[i] != want[i] {
			t.Errorf("TrustedDomains[%d] = %q, want %q", i, domains[i], want[i])
		}
	}
}

func TestFilePersistsAcrossStores(t *testing.T) {
	p, err := paths.New(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("paths.New: %v", err)
	}

	first := NewStore(p, logging.Nop())
	if _, err := first.Add("https://persisted.example/r.git"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	second := NewStore(p, logging.Nop())
	if !second.IsTrusted("https://persisted.example/other.git") {
		t.Error("trust did not persist across store instances")
	}
}
