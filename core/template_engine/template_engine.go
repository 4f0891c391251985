package template_engine

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/tristendillon/govgen/core/logger"
)

//go:embed templates
var TemplateFS embed.FS

type TemplateRef struct {
	Path  string
	IsDir bool
}

func (tr TemplateRef) IsDirectory() bool {
	return tr.IsDir
}

var TEMPLATES = struct {
	GOVERNANCE_MOVE TemplateRef
	CONFIG_YAML     TemplateRef
}{
	GOVERNANCE_MOVE: TemplateRef{Path: "governance.move.tmpl"},
	CONFIG_YAML:     TemplateRef{Path: "govgen.yaml.tmpl"},
}

type TemplateEngine struct {
	funcMap template.FuncMap
}

func getDefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
	}
}

func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		funcMap: getDefaultFuncMap(),
	}
}

func (te *TemplateEngine) parse(templateRef TemplateRef) (*template.Template, error) {
	if templateRef.IsDirectory() {
		return nil, fmt.Errorf("cannot render directory reference: %s", templateRef.Path)
	}

	templatePath := filepath.ToSlash(filepath.Join("templates", templateRef.Path))
	content, err := TemplateFS.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", templatePath, err)
	}

	tmpl, err := template.New(filepath.Base(templateRef.Path)).
		Option("missingkey=error").
		Funcs(te.funcMap).
		Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateRef.Path, err)
	}
	return tmpl, nil
}

func (te *TemplateEngine) Render(templateRef TemplateRef, w io.Writer, data interface{}) error {
	tmpl, err := te.parse(templateRef)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", templateRef.Path, err)
	}
	return nil
}

func (te *TemplateEngine) RenderString(templateRef TemplateRef, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := te.Render(templateRef, &buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// GenerateFile renders templateRef into outputPath, creating parent directories.
func (te *TemplateEngine) GenerateFile(templateRef TemplateRef, outputPath string, data interface{}) error {
	content, err := te.RenderString(templateRef, data)
	if err != nil {
		return err
	}
	return WriteFile(outputPath, content)
}

func WriteFile(outputPath, content string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create output file %s: %w", outputPath, err)
	}
	logger.Debug("Wrote %s (%d bytes)", outputPath, len(content))
	return nil
}
