package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	engine "github.com/rxtech-lab/argo-dca/internal/backtest/engine/engine_v1"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"
)

const (
	schemaName       = "backtest-engine-v1-config.json"
	sampleConfigName = "backtest-engine-v1-config.yaml"
)

// generate writes the config JSON schema into outputDir and, unless one
// already exists, a sample YAML config pointing at it.
func generate(outputDir string) error {
	config := engine.SampleConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	schemaPath := filepath.Join(outputDir, schemaName)
	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0o644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	log.Printf("Schema successfully generated at %s", schemaPath)

	sampleConfigPath := filepath.Join(outputDir, sampleConfigName)
	if _, err := os.Stat(sampleConfigPath); !os.IsNotExist(err) {
		return nil
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaName+"\n"), yamlBytes...)

	if err := os.WriteFile(sampleConfigPath, yamlBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	log.Printf("Sample config successfully generated at %s", sampleConfigPath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate the backtest config JSON schema and a sample config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory the schema and sample config are written to",
				Value:   "config",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return generate(cmd.String("output"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
