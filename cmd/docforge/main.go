package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"docforge/internal/config"
	"docforge/internal/docx"
	"docforge/internal/domain"
	"docforge/internal/handler"
	"docforge/internal/service"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "docforge",
		Usage:   "Compile declarative YAML/JSON specifications into styled documents",
		Version: version,
		Commands: []*cli.Command{
			serveCommand(),
			generateCommand(),
			inspectCommand(),
			replaceCommand(),
			batchCommand(),
			templatesCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Action: func(c *cli.Context) error {
			container := config.NewContainer()
			router := handler.NewRouter(container)
			addr := ":" + container.Config.GetServerPort()
			container.Logger.Info("Server listening", "address", addr)
			return http.ListenAndServe(addr, router)
		},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate a document from a specification file",
		ArgsUsage: "SPEC_FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the document to `FILE` (default: derived from the title)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: docx or pdf",
				Value:   domain.OutputDOCX,
			},
			&cli.StringSliceFlag{
				Name:  "var",
				Usage: "Placeholder value in KEY=VALUE form (repeatable)",
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: specification file")
	}
	specPath := c.Args().Get(0)

	source, err := os.ReadFile(specPath)
	if err != nil {
		return fmt.Errorf("reading specification: %w", err)
	}

	container := config.NewContainer()
	opts := domain.GenerateOptions{
		Format:    c.String("format"),
		Variables: parseVarFlags(c.StringSlice("var")),
	}

	out, err := container.Generator.GenerateSource(c.Context, source, formatForPath(specPath), opts)
	if err != nil {
		return err
	}

	target := c.String("output")
	if target == "" {
		target = out.Filename
	}
	if err := os.WriteFile(target, out.Data, 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}

	fmt.Printf("Wrote %s (%d bytes)\n", target, len(out.Data))
	if len(out.OpenPlaceholders) > 0 {
		fmt.Printf("Open placeholders: %s\n", strings.Join(out.OpenPlaceholders, ", "))
	}
	return nil
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Report metadata and statistics for a document",
		ArgsUsage: "DOCX_FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("missing required argument: document file")
			}
			data, err := os.ReadFile(c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}
			info, err := docx.NewInspector().Inspect(data)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
}

func replaceCommand() *cli.Command {
	return &cli.Command{
		Name:      "replace",
		Usage:     "Substitute placeholder tokens in an existing document",
		ArgsUsage: "DOCX_FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the rewritten document to `FILE` (default: in place)",
			},
			&cli.StringSliceFlag{
				Name:  "var",
				Usage: "Replacement in KEY=VALUE form (repeatable)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("missing required argument: document file")
			}
			path := c.Args().Get(0)
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}
			vars := parseVarFlags(c.StringSlice("var"))
			if len(vars) == 0 {
				return fmt.Errorf("no replacements given, use --var KEY=VALUE")
			}
			rewritten, count, err := docx.NewRewriter().Replace(data, vars)
			if err != nil {
				return err
			}
			target := c.String("output")
			if target == "" {
				target = path
			}
			if err := os.WriteFile(target, rewritten, 0o644); err != nil {
				return fmt.Errorf("writing document: %w", err)
			}
			fmt.Printf("Made %d replacements in %s\n", count, target)
			return nil
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Generate many documents from a JSON batch file into a zip archive",
		ArgsUsage: "BATCH_FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the archive to `FILE`",
				Value:   "documents.zip",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("missing required argument: batch file")
			}
			data, err := os.ReadFile(c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("reading batch file: %w", err)
			}
			var req struct {
				Items []domain.BatchItem `json:"items"`
			}
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("parsing batch file: %w", err)
			}

			container := config.NewContainer()
			result, err := container.Batch.Run(c.Context, req.Items)
			if err != nil {
				return err
			}

			target := c.String("output")
			if err := os.WriteFile(target, result.Archive, 0o644); err != nil {
				return fmt.Errorf("writing archive: %w", err)
			}
			fmt.Printf("Wrote %s: %d succeeded, %d failed\n", target, len(result.Succeeded), len(result.Failed))
			for _, f := range result.Failed {
				fmt.Printf("  failed %s: %v\n", f.Filename, f.Err)
			}
			return nil
		},
	}
}

func templatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "Work with the built-in template registry",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every built-in template",
				Action: func(c *cli.Context) error {
					for _, t := range service.ListTemplates() {
						fmt.Printf("%-12s %-8s %s\n", t.Name, t.PageSize, t.Description)
					}
					return nil
				},
			},
			{
				Name:      "info",
				Usage:     "Show the full configuration of one template",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return fmt.Errorf("missing required argument: template name")
					}
					name := c.Args().Get(0)
					tpl, ok := service.GetTemplate(name)
					if !ok {
						return fmt.Errorf("unknown template %q", name)
					}
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(tpl)
				},
			},
		},
	}
}

// formatForPath maps a spec file extension onto its source format.
func formatForPath(path string) domain.SourceFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return domain.FormatJSON
	}
	return domain.FormatYAML
}

func parseVarFlags(flags []string) map[string]string {
	if len(flags) == 0 {
		return nil
	}
	vars := map[string]string{}
	for _, f := range flags {
		if i := strings.Index(f, "="); i > 0 {
			vars[f[:i]] = f[i+1:]
		}
	}
	return vars
}
