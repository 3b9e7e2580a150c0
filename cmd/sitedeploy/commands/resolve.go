package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
)

// ResolveCmd prints the resolved deployment configuration.
type ResolveCmd struct {
	Env    string `short:"e" name:"env" help:"Deployment environment (local, pages-preview, pages-production)"`
	Dev    bool   `name:"dev" help:"Resolve for development mode (base path cleared)"`
	Format string `short:"f" name:"format" enum:"yaml,json,table" default:"yaml" help:"Output format (yaml, json, table)"`
}

// resolvedOutput is the printed form of a resolution.
type resolvedOutput struct {
	deploy.Config `yaml:",inline"`
	Fingerprint   string `yaml:"fingerprint" json:"fingerprint"`
}

func (r *ResolveCmd) Run(g *Global, root *CLI) error {
	p, err := loadProject(g, root)
	if err != nil {
		return err
	}
	mode := deploy.ModeBuild
	if r.Dev {
		mode = deploy.ModeDevelopment
	}
	d, err := p.resolve(r.Env, mode)
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	return writeResolved(g.out(), r.Format, d)
}

func writeResolved(out io.Writer, format string, d deploy.Config) error {
	doc := resolvedOutput{Config: d, Fingerprint: d.Fingerprint()}
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "table":
		_, err := fmt.Fprintln(out, renderTable(doc))
		return err
	default:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
}

var (
	tableBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)
	tableTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))
	tableLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)
	tableValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
	tableEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

func renderTable(doc resolvedOutput) string {
	value := func(v string) string {
		if v == "" {
			return tableEmptyStyle.Render("(none)")
		}
		return tableValueStyle.Render(v)
	}
	basePath := value(doc.BasePath)
	if doc.BasePath == "" {
		basePath = tableEmptyStyle.Render("(root)")
	}
	rows := []struct{ label, value string }{
		{"environment", value(string(doc.Environment))},
		{"mode", value(string(doc.Mode))},
		{"adapter", value(string(doc.Adapter))},
		{"base_path", basePath},
		{"output_directory", value(doc.OutputDirectory)},
		{"fallback_page", value(doc.FallbackPage)},
		{"prerender_policy", value(string(doc.PrerenderPolicy))},
		{"fingerprint", value(doc.Fingerprint)},
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, tableTitleStyle.Render("Deployment configuration"))
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, tableLabelStyle.Render(row.label), row.value))
	}
	return tableBorderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
