package sitecms

import "embed"

// EmbeddedContent holds the default site content seeded on first start:
// default_content.yaml
//
//go:embed embedded/*
var EmbeddedContent embed.FS
