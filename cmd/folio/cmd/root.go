package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/app"
	"github.com/templui/folio/internal/config"
	"github.com/templui/folio/internal/logger"
	"github.com/templui/folio/internal/model"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

var output = formatYAML

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "folio",
		Short:         "Track portfolio goals, their steps and projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if output != formatYAML && output != formatJSON {
				return fmt.Errorf("unknown output format %q (use yaml or json)", output)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&output, "output", "o", formatYAML, "output format: yaml or json")

	root.AddCommand(GoalsCmd())
	root.AddCommand(StepsCmd())
	root.AddCommand(ProjectsCmd())
	root.AddCommand(MigrateCmd())

	return root
}

// Execute runs the root command. Failures are printed here instead of by
// cobra so API validation errors come out as field messages.
func Execute(ctx context.Context) error {
	root := RootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", apierr.Message(err))
	}
	return err
}

// withApp boots the application from the environment for one command.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg := config.Load()

	logger.Init(os.Stderr, cfg.IsDevelopment(), cfg.SentryDSN)
	defer logger.Flush()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	return fn(ctx, a)
}

func printOut(w io.Writer, v any) error {
	if output == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

// readProjectFile decodes project fields from a YAML file, "-" meaning
// stdin. Unknown keys are rejected.
func readProjectFile(in io.Reader, path string) (model.ProjectFields, error) {
	var fields model.ProjectFields

	r := in
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fields, fmt.Errorf("failed to open project file: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return fields, fmt.Errorf("project file %s is empty", path)
		}
		return fields, fmt.Errorf("failed to parse project file: %w", err)
	}
	return fields, nil
}
