package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/debemdeboas/metablog/internal/config"
)

func TestGenerateRoundTrips(t *testing.T) {
	for _, format := range []string{"yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			var b strings.Builder
			if err := generate(&b, format); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.HasPrefix(b.String(), "# MetaBlog Configuration Example") {
				t.Error("Expected header comment")
			}
			if !strings.Contains(b.String(), "jsonplaceholder.typicode.com") {
				t.Error("Expected default API URL in output")
			}

			path := filepath.Join(t.TempDir(), "config."+format)
			if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
				t.Fatal(err)
			}

			previous := config.AppConfig
			defer func() { config.AppConfig = previous }()

			if err := config.LoadConfig(path); err != nil {
				t.Fatalf("Generated config failed to load: %v", err)
			}
			if config.AppConfig.Search.DebounceMS != 300 || config.AppConfig.Server.Port != "12600" {
				t.Errorf("Expected defaults to survive, got %+v", config.AppConfig)
			}
		})
	}
}

func TestGenerateUnknownFormat(t *testing.T) {
	var b strings.Builder
	if err := generate(&b, "ini"); err == nil {
		t.Error("Expected error for unknown format")
	}
}
