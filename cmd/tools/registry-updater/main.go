// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"dealsense/pkg/registry"
)

func main() {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	genPath := generateCmd.String("path", "docs/contract-registry.json", "Output path for the generated catalog")
	genVersion := generateCmd.String("version", "1.0.0", "Catalog version")

	valPath := validateCmd.String("path", "docs/contract-registry.json", "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		generateCmd.Parse(os.Args[2:])
		if err := generateCatalog(*genPath, *genVersion); err != nil {
			fmt.Printf("Error generating catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote contract catalog to %s\n", *genPath)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		cat, err := registry.LoadCatalog(*valPath)
		if err != nil {
			fmt.Printf("Failed to load catalog: %v\n", err)
			os.Exit(1)
		}
		if err := cat.Validate(); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog validation passed. Found %d contracts.\n", len(cat.Contracts))

	case "help":
		fallthrough
	default:
		help()
	}
}

func generateCatalog(path, version string) error {
	cat := registry.BuildCatalog(version)

	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  generate  Regenerate the contract catalog from the constraints table
  validate  Validate a catalog file against the constraints table
  help      Show this help message

Examples:
  registry-updater generate -path docs/contract-registry.json -version 1.1.0
  registry-updater validate -path docs/contract-registry.json
`)
}
