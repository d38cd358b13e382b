// Command javabind binds a tree of Java sources against a bootclasspath and
// classpath, reporting diagnostics, per SPEC_FULL.md §4.11's CLI layer over
// the config and binder packages.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/binder"
	"github.com/viant/javabind/config"
	"github.com/viant/javabind/syntax"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("javabind failed")
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		sourceRoot string
		boot       []string
		classpath  []string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "javabind",
		Short: "Bind a Java source tree against a bootclasspath and classpath",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}

			opts := &config.Options{}
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				opts = loaded
			}
			opts.MergeOverrides(sourceRoot, boot, classpath)

			if opts.SourceRoot == "" {
				return fmt.Errorf("javabind: no source root given (pass --source or set sourceRoot in config)")
			}

			return runBind(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML options file")
	cmd.Flags().StringVar(&sourceRoot, "source", "", "source root directory, overrides config")
	cmd.Flags().StringArrayVar(&boot, "boot", nil, "bootclasspath archive URL, repeatable, overrides config")
	cmd.Flags().StringArrayVar(&classpath, "classpath", nil, "classpath archive URL, repeatable, overrides config")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	return cmd
}

func runBind(ctx context.Context, opts *config.Options) error {
	units, err := parseSourceRoot(opts.SourceRoot)
	if err != nil {
		return err
	}
	log.Info().Int("units", len(units)).Str("root", opts.SourceRoot).Msg("parsed source tree")

	if modPath, err := config.DetectModulePath(opts.SourceRoot); err != nil {
		log.Debug().Err(err).Msg("module path detection skipped")
	} else if modPath != "" {
		log.Debug().Str("module", modPath).Msg("source root sits inside a Go module; binding the Java tree alongside it")
	}

	bindings, err := binder.Bind(ctx, units, binder.Options{
		BootClasspath: opts.BootClasspath,
		Classpath:     opts.Classpath,
	})
	if err != nil {
		return err
	}
	defer bindings.Close()

	for _, d := range bindings.Sink.Items() {
		log.Warn().Str("kind", d.Kind.String()).Str("symbol", d.Symbol).Msg(d.Message)
	}
	log.Info().Int("classes", len(bindings.Classes)).Int("diagnostics", len(bindings.Sink.Items())).Msg("binding complete")
	return nil
}

func parseSourceRoot(root string) ([]*ast.CompUnit, error) {
	builder := syntax.New()
	var units []*ast.CompUnit
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".java") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		unit, err := builder.Build(src, path)
		if err != nil {
			return fmt.Errorf("javabind: parsing %s: %w", path, err)
		}
		units = append(units, unit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}
