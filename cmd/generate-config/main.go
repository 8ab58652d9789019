package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/metablog/internal/config"
)

const header = "# MetaBlog Configuration Example\n# Copy this file to config.yaml (or config.toml) and customize as needed\n\n"

func generate(w io.Writer, format string) error {
	cfg := config.Default()

	var body []byte
	switch format {
	case "yaml", "yml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error generating YAML: %w", err)
		}
		body = data
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("error generating TOML: %w", err)
		}
		body = buf.Bytes()
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	_, err := io.WriteString(w, header+string(body))
	return err
}

func main() {
	format := flag.String("format", "yaml", "output format: yaml or toml")
	flag.Parse()

	outputFile := "config.example." + *format
	if flag.NArg() > 0 {
		outputFile = flag.Arg(0)
	}

	if outputFile == "-" {
		if err := generate(os.Stdout, *format); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	var buf bytes.Buffer
	if err := generate(&buf, *format); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := os.WriteFile(outputFile, buf.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
