package mcpserver

import (
	"encoding/json"

	"github.com/panbanda/revue/pkg/analyzer"
	"github.com/panbanda/revue/pkg/models"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	publisherKey   = "io.modelcontextprotocol.registry/publisher-provided"
)

// Manifest is the MCP registry server.json document for revue. The
// publisher metadata carries what a client can call once connected.
type Manifest struct {
	Schema      string                  `json:"$schema"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Version     string                  `json:"version"`
	Repository  *Repository             `json:"repository,omitempty"`
	Packages    []Package               `json:"packages,omitempty"`
	Meta        map[string]Capabilities `json:"_meta,omitempty"`
}

// Capabilities describes the registered tools and prompts, the issue
// categories reported and the thresholds they are measured against.
type Capabilities struct {
	Tools      []Capability        `json:"tools"`
	Prompts    []Capability        `json:"prompts,omitempty"`
	QuickFixes map[string][]string `json:"quick_fixes"`
	Categories []string            `json:"categories"`
	Thresholds analyzer.Thresholds `json:"thresholds"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package tells a registry client how to launch `revue mcp`.
type Package struct {
	RegistryType     string     `json:"registryType"`
	Identifier       string     `json:"identifier"`
	PackageArguments []Argument `json:"packageArguments,omitempty"`
	Transport        Transport  `json:"transport"`
}

type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

type Transport struct {
	Type string `json:"type"`
}

// Manifest describes this server for the given release version.
func (s *Server) Manifest(version string) Manifest {
	if version == "" || version == "dev" {
		version = "0.0.0"
	}
	caps := Capabilities{
		Tools:      s.Tools(),
		Prompts:    s.Prompts(),
		QuickFixes: s.QuickFixes(),
		Thresholds: s.analyzer.Thresholds(),
	}
	for _, c := range models.Categories {
		caps.Categories = append(caps.Categories, string(c))
	}
	return Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.panbanda/revue",
		Description: "Java code review: method metrics, code smells and reversible quick fixes",
		Version:     version,
		Repository: &Repository{
			URL:    "https://github.com/panbanda/revue",
			Source: "github",
		},
		Packages: []Package{{
			RegistryType:     "oci",
			Identifier:       "ghcr.io/panbanda/revue:" + version,
			PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
			Transport:        Transport{Type: "stdio"},
		}},
		Meta: map[string]Capabilities{publisherKey: caps},
	}
}

// ManifestJSON renders Manifest as indented server.json.
func (s *Server) ManifestJSON(version string) ([]byte, error) {
	return json.MarshalIndent(s.Manifest(version), "", "  ")
}
