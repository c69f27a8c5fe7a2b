package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/promptforge/internal/export"
)

func renderCmd(g *globals) *cobra.Command {
	var (
		ref    string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the prompt of a saved template",
		Long: `Render the prompt of a saved template without starting a server.

--template takes an id or a name (case-insensitive). --format is natural
(markdown, default) or structured (JSON). With --out the prompt is written
to that file, or into that directory as prompt.md / prompt.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			core, _, cleanup, err := g.openCore()
			defer cleanup()
			if err != nil {
				return err
			}

			t, ok := core.Session.FindTemplate(ref)
			if !ok {
				return fmt.Errorf("template %q not found", ref)
			}
			content, err := export.Serialize(t.Data, f)
			if err != nil {
				return err
			}

			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), content)
				return err
			}
			path := out
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				path = filepath.Join(out, export.Filename(f))
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&ref, "template", "t", "", "Template id or name")
	cmd.Flags().StringVarP(&format, "format", "f", "natural", "Output format (natural, structured)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file or directory (default stdout)")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func templatesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List saved templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, _, cleanup, err := g.openCore()
			defer cleanup()
			if err != nil {
				return err
			}

			list := core.Session.Templates()
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates saved.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tLANGUAGE\tCREATED")
			for _, t := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Name, t.Data.Language, t.CreatedAt)
			}
			return w.Flush()
		},
	}
}
