// Command templateer keeps template modules and their generated model stubs
// in sync, and renders templates with validated values.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-templateer/pkg/config"
	"github.com/goliatone/go-templateer/pkg/generator"
	"github.com/goliatone/go-templateer/pkg/prompt"
	"github.com/goliatone/go-templateer/pkg/schemaexport"
)

var (
	version = "dev"

	configPath string
	verbose    bool

	logger   zerolog.Logger
	settings config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "templateer",
	Short: "Self-generating template toolkit",
	Long: `templateer derives typed data models from template variable usage.

It scans a source directory of template modules, extracts each template's
free variables, and writes one model-stub manifest per module. Manifests are
meant to be hand-edited: declared types, defaults, and descriptions survive
regeneration, while the field-name set always tracks the template.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().Timestamp().Logger()

		var err error
		settings, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
}

var autogenCmd = &cobra.Command{
	Use:   "autogen",
	Short: "Synthesize model stubs from template variables",
	Long: `Scans the template directory, extracts free variables from each module,
and writes one model-stub manifest per module, merging any prior hand edits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		gen := generator.New(
			generator.WithSettings(settings),
			generator.WithLogger(logger),
		)

		req := generator.Request{Mode: generator.ModeAutogen, Modules: args}
		if watch {
			return gen.Watch(cmd.Context(), req)
		}

		report, err := gen.Run(cmd.Context(), req)
		printSummary(report)
		return err
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Synthesize stubs and render each template",
	Long: `Runs autogen, then renders every module using values from the values
directory (one YAML/JSON document per module, named after it). Declared
defaults fill gaps; with --interactive, remaining fields are prompted for.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		valuesDir, _ := cmd.Flags().GetString("values")
		interactive, _ := cmd.Flags().GetBool("interactive")

		values, err := generator.LoadValuesDir(valuesDir)
		if err != nil {
			return err
		}

		options := []generator.Option{
			generator.WithSettings(settings),
			generator.WithLogger(logger),
		}
		if interactive {
			options = append(options, generator.WithValueResolver(prompt.NewResolver(nil)))
		}

		gen := generator.New(options...)
		report, err := gen.Run(cmd.Context(), generator.Request{
			Mode:    generator.ModeGenerate,
			Modules: args,
			Values:  values,
		})
		printSummary(report)
		return err
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export a JSON Schema per model stub",
	Long: `Runs autogen, then writes one JSON Schema document per module into the
schema directory so value documents can be validated by editors and CI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen := generator.New(
			generator.WithSettings(settings),
			generator.WithLogger(logger),
		)

		report, runErr := gen.Run(cmd.Context(), generator.Request{
			Mode:    generator.ModeAutogen,
			Modules: args,
		})

		if err := os.MkdirAll(settings.SchemaDir, 0o755); err != nil {
			return fmt.Errorf("create schema dir: %w", err)
		}
		for _, result := range report.Results {
			data, err := schemaexport.Encode(result.Stub)
			if err != nil {
				return err
			}
			path := schemaexport.Path(settings.SchemaDir, result.Module)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write schema %s: %w", path, err)
			}
			logger.Info().Str("module", result.Module).Str("schema", path).Msg("schema exported")
		}

		printSummary(report)
		return runErr
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the templateer version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("templateer %s\n", version)
	},
}

// printSummary writes the per-module outcome to stdout; errors already went to
// the structured log.
func printSummary(report generator.Report) {
	for _, result := range report.Results {
		target := result.StubPath
		if result.OutputPath != "" {
			target = result.OutputPath
		}
		fmt.Printf("  ok   %-24s %s\n", result.Module, filepath.ToSlash(target))
	}
	for _, failure := range report.Failures {
		fmt.Printf("  FAIL %-24s %v\n", failure.Module, failure.Err)
	}
	fmt.Printf("%d succeeded, %d failed\n", len(report.Results), len(report.Failures))
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to settings file (default templateer.yaml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	autogenCmd.Flags().Bool("watch", false, "re-run when template files change")
	generateCmd.Flags().String("values", "values", "directory of per-module value documents")
	generateCmd.Flags().Bool("interactive", false, "prompt for missing field values")

	rootCmd.AddCommand(autogenCmd, generateCmd, schemaCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
