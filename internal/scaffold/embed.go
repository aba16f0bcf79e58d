package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed templates
var templateFS embed.FS

func readTemplate(name string) (string, error) {
	data, err := fs.ReadFile(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", name, err)
	}
	return string(data), nil
}
