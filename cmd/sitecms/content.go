package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shieldfoundation/sitecms"
	"github.com/shieldfoundation/sitecms/content"
)

var (
	docName   string
	outFile   string
	setString bool
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect and edit site content documents",
	Long: `Read and write site content documents directly in the database.

Subcommands:
  export          - Write a document as YAML
  import <file>   - Replace a document from a YAML file
  get <path>      - Print one field
  set <path> <v>  - Write one field and save the document
  paths           - List every field path`,
}

var contentExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a content document as YAML",
	Args:  cobra.NoArgs,
	RunE:  runContentExport,
}

var contentImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace a content document from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentImport,
}

var contentGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Print the value at a dot-separated path",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentGet,
}

var contentSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Write a value at a dot-separated path and save",
	Args:  cobra.ExactArgs(2),
	RunE:  runContentSet,
}

var contentPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List every field path of a content document",
	Args:  cobra.NoArgs,
	RunE:  runContentPaths,
}

func init() {
	contentCmd.PersistentFlags().StringVar(&docName, "name", sitecms.SiteDocument, "Content document name")
	contentExportCmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default stdout)")
	contentSetCmd.Flags().BoolVar(&setString, "string", false, "Store the value as a string even if it looks like a number or boolean")

	contentCmd.AddCommand(contentExportCmd)
	contentCmd.AddCommand(contentImportCmd)
	contentCmd.AddCommand(contentGetCmd)
	contentCmd.AddCommand(contentSetCmd)
	contentCmd.AddCommand(contentPathsCmd)
}

// withStore opens the configured database for the duration of fn.
func withStore(fn func(s *sitecms.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := sitecms.NewStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()
	return fn(s)
}

func runContentExport(cmd *cobra.Command, args []string) error {
	return withStore(func(s *sitecms.Store) error {
		doc, err := s.LoadDocument(cmd.Context(), docName)
		if err != nil {
			return err
		}
		var w io.Writer = cmd.OutOrStdout()
		if outFile != "" {
			f, err := os.Create(outFile)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return sitecms.EncodeContentYAML(w, doc)
	})
}

func runContentImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	doc, err := sitecms.DecodeContentYAML(f)
	if err != nil {
		return err
	}
	return withStore(func(s *sitecms.Store) error {
		if err := s.SaveDocument(cmd.Context(), docName, doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d fields into %q\n", len(content.Paths(doc)), docName)
		return nil
	})
}

func runContentGet(cmd *cobra.Command, args []string) error {
	if !content.ValidPath(args[0]) {
		return fmt.Errorf("%w: %q", sitecms.ErrInvalidPath, args[0])
	}
	return withStore(func(s *sitecms.Store) error {
		doc, err := s.LoadDocument(cmd.Context(), docName)
		if err != nil {
			return err
		}
		if sub, ok := content.Get(doc, args[0]).(content.Document); ok {
			return sitecms.EncodeContentYAML(cmd.OutOrStdout(), sub)
		}
		fmt.Fprintln(cmd.OutOrStdout(), content.GetString(doc, args[0]))
		return nil
	})
}

func runContentSet(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !content.ValidPath(path) {
		return fmt.Errorf("%w: %q", sitecms.ErrInvalidPath, path)
	}
	value := parseValue(args[1], setString)
	return withStore(func(s *sitecms.Store) error {
		return setField(cmd.Context(), s, docName, path, value)
	})
}

func setField(ctx context.Context, b content.Backend, name, path string, value any) error {
	doc, err := b.LoadDocument(ctx, name)
	if err != nil {
		return err
	}
	return b.SaveDocument(ctx, name, content.Set(doc, path, value))
}

// parseValue interprets raw as a number or boolean unless asString is set.
func parseValue(raw string, asString bool) any {
	if asString {
		return raw
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return raw
}

func runContentPaths(cmd *cobra.Command, args []string) error {
	return withStore(func(s *sitecms.Store) error {
		doc, err := s.LoadDocument(cmd.Context(), docName)
		if err != nil {
			return err
		}
		for _, p := range content.Paths(doc) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", p, content.GetString(doc, p))
		}
		return nil
	})
}
