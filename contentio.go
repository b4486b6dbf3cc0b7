package sitecms

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/shieldfoundation/sitecms/content"
)

const defaultContentFile = "embedded/default_content.yaml"

// DecodeContentYAML reads a content document from YAML. The top level must
// be a mapping.
func DecodeContentYAML(r io.Reader) (content.Document, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return content.Document{}, nil
		}
		return nil, fmt.Errorf("decode content yaml: %w", err)
	}
	return content.FromMap(raw), nil
}

// EncodeContentYAML writes doc as YAML.
func EncodeContentYAML(w io.Writer, doc content.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toPlainMap(doc)); err != nil {
		return fmt.Errorf("encode content yaml: %w", err)
	}
	return enc.Close()
}

// toPlainMap converts nested Documents into map[string]any so the YAML
// encoder emits ordinary mappings.
func toPlainMap(doc content.Document) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch child := v.(type) {
		case content.Document:
			out[k] = toPlainMap(child)
		case map[string]any:
			out[k] = toPlainMap(content.Document(child))
		default:
			out[k] = v
		}
	}
	return out
}

// DefaultContent returns the embedded default site document.
func DefaultContent() (content.Document, error) {
	f, err := EmbeddedContent.Open(defaultContentFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeContentYAML(f)
}

// documentStore is the subset of Store used for seeding.
type documentStore interface {
	content.Saver
	DocumentExists(ctx context.Context, name string) (bool, error)
}

// SeedDefaultContent writes the embedded default site document unless one
// has already been saved.
func SeedDefaultContent(ctx context.Context, s documentStore) error {
	exists, err := s.DocumentExists(ctx, SiteDocument)
	if err != nil || exists {
		return err
	}
	doc, err := DefaultContent()
	if err != nil {
		return err
	}
	return s.SaveDocument(ctx, SiteDocument, doc)
}
