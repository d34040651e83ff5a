package cliconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}
	if len(cfg.Credentials) != 0 {
		t.Fatalf("expected empty config, got %v", cfg.Credentials)
	}

	cred := &Credential{ClientID: "svc", ClientSecret: "s3cret"}
	if err := cfg.SetCredential("https://sts.example.com/", cred); err != nil {
		t.Fatalf("SetCredential: %v", err)
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(filepath.Join(home, ".chatsts", "credentials.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// the path doesn't matter, only the host
	got, err := loaded.GetCredential("https://sts.example.com/sts")
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}
	if *got != *cred {
		t.Errorf("GetCredential() = %+v, want %+v", got, cred)
	}

	if _, err := loaded.GetCredential("https://other.example.com"); !errors.Is(err, ErrCredentialNotFound) {
		t.Errorf("expected ErrCredentialNotFound, got %v", err)
	}

	removed, err := loaded.RemoveCredential("https://sts.example.com")
	if err != nil || !removed {
		t.Errorf("RemoveCredential() = %v, %v", removed, err)
	}
	if _, err := loaded.GetCredential("https://sts.example.com"); !errors.Is(err, ErrCredentialNotFound) {
		t.Errorf("credential still present after removal")
	}
}

func TestServerKey_RequiresHost(t *testing.T) {
	if _, err := (&CLIConfig{}).GetCredential("localhost:3000"); err == nil {
		t.Errorf("expected error for URL without scheme")
	}
}
