package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/toolcog/tool-api/internal/config"
	"github.com/toolcog/tool-api/internal/document"
	"github.com/toolcog/tool-api/internal/handle"
	"github.com/toolcog/tool-api/internal/loader"
)

func GenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate tool handles from OpenAPI specs",
		RunE:  runGenerate,
	}

	config.BindFlags(cmd)

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if !dryRun {
		if err := os.MkdirAll(cfg.Output, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	// Documents are independent; each goroutine owns its own document
	// context, so no locking is needed beyond the errgroup itself.
	var group errgroup.Group
	for _, spec := range cfg.Specs {
		group.Go(func() error {
			return generateDocument(cmd, cfg, log, spec, dryRun)
		})
	}
	return group.Wait()
}

func generateDocument(cmd *cobra.Command, cfg *config.Config, log zerolog.Logger, spec string, dryRun bool) error {
	result, err := loader.LoadFile(spec, &loader.Options{SkipValidation: cfg.SkipValidation})
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		log.Warn().Str("spec", spec).Msg(warning)
	}

	api := result.API
	log.Info().
		Str("spec", spec).
		Str("title", api.Title()).
		Str("version", api.Version()).
		Msg("loaded OpenAPI document")

	generator := handle.New(handle.Options{Server: cfg.Server})

	paths, ok := api.Paths()
	if !ok {
		log.Warn().Str("spec", spec).Msg("document declares no paths")
		return nil
	}

	generated := 0
	for _, item := range paths.Items() {
		for _, op := range item.Operations() {
			if !includeOperation(op, cfg) {
				continue
			}
			h, err := generator.Handle(op)
			if err != nil {
				// Per-operation failures are local; skip and continue.
				log.Warn().
					Str("spec", spec).
					Str("method", op.Method()).
					Str("path", op.Path()).
					Err(err).
					Msg("skipping operation")
				continue
			}
			data, err := marshalHandle(h, cfg.Format)
			if err != nil {
				return fmt.Errorf("encoding handle %s: %w", h.Name, err)
			}
			if dryRun {
				cmd.Printf("# %s\n%s\n", h.Name, data)
			} else {
				path := filepath.Join(cfg.Output, h.Name+"."+cfg.Format)
				if err := os.WriteFile(path, data, 0644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
			}
			generated++
		}
	}

	log.Info().Str("spec", spec).Int("handles", generated).Msg("generation complete")
	return nil
}

func includeOperation(op document.Operation, cfg *config.Config) bool {
	tags := op.Tags()
	if len(cfg.IncludeTags) > 0 && !intersects(tags, cfg.IncludeTags) {
		return false
	}
	return !intersects(tags, cfg.ExcludeTags)
}

func intersects(a, b []string) bool {
	for _, s := range a {
		if slices.Contains(b, s) {
			return true
		}
	}
	return false
}

func marshalHandle(h *handle.Handle, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(h, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return yaml.Marshal(h)
	}
}
