package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("INKWELL_TEST_NAME", "blog")
	path := writeFile(t, "name: ${INKWELL_TEST_NAME}\nport: 8080\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "blog" || s.Port != 8080 {
		t.Errorf("got %+v", s)
	}
}

func TestLoadRunsValidator(t *testing.T) {
	path := writeFile(t, "name: x\nport: 0\n")
	var s sample
	if err := Load(path, &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOptionalKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Port: 3000}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Name != "default" || s.Port != 3000 {
		t.Errorf("defaults changed: %+v", s)
	}
}

func TestLoadOptionalOverridesDefaults(t *testing.T) {
	path := writeFile(t, "port: 9090\n")
	s := sample{Name: "default", Port: 3000}
	if err := LoadOptional(path, &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Name != "default" || s.Port != 9090 {
		t.Errorf("got %+v", s)
	}
}
