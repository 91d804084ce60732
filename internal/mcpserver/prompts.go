package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptSpec is the YAML frontmatter of a prompt file. Arguments are
// substituted into the body wherever {{name}} appears.
type promptSpec struct {
	Description string      `yaml:"description"`
	Arguments   []promptArg `yaml:"arguments"`
}

type promptArg struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// registerPrompts registers every embedded review prompt under its file name.
func (s *Server) registerPrompts() {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		s.logger.Error().Err(err).Msg("read embedded prompts")
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".md")
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			s.logger.Error().Err(err).Str("prompt", name).Msg("read prompt")
			continue
		}

		spec, body := parseFrontmatter(content)
		prompt := &mcp.Prompt{Name: name, Description: spec.Description}
		for _, a := range spec.Arguments {
			prompt.Arguments = append(prompt.Arguments, &mcp.PromptArgument{
				Name:        a.Name,
				Description: a.Description,
				Required:    a.Required,
			})
		}
		s.server.AddPrompt(prompt, makePromptHandler(spec, body))
		s.prompts = append(s.prompts, Capability{Name: name, Description: spec.Description})
	}
}

// parseFrontmatter splits a leading YAML block from the prompt body. Content
// without a valid block is returned whole with an empty spec.
func parseFrontmatter(content []byte) (promptSpec, string) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return promptSpec{}, string(content)
	}
	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return promptSpec{}, string(content)
	}

	var spec promptSpec
	if err := yaml.Unmarshal(rest[:end], &spec); err != nil {
		return promptSpec{}, string(content)
	}
	return spec, strings.TrimPrefix(string(rest[end+5:]), "\n")
}

// makePromptHandler fills the body's {{name}} placeholders from the request
// arguments. A missing required argument fails the request.
func makePromptHandler(spec promptSpec, body string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		text := body
		for _, a := range spec.Arguments {
			v, ok := args[a.Name]
			if !ok || v == "" {
				if a.Required {
					return nil, fmt.Errorf("prompt argument %q is required", a.Name)
				}
				v = "the file I point you to"
			}
			text = strings.ReplaceAll(text, "{{"+a.Name+"}}", v)
		}
		return &mcp.GetPromptResult{
			Description: spec.Description,
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: text}},
			},
		}, nil
	}
}
