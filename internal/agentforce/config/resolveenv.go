package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
)

type templateContext struct {
	ENV map[string]string
}

// ResolveEnv replaces {{ .ENV.VAR }} placeholders with values from the
// process environment or a .env file in the current working directory.
func ResolveEnv(inputRaw []byte) ([]byte, error) {
	input := string(inputRaw)

	// Load .env from the current working directory if it exists
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	envPath := filepath.Join(cwd, ".env")
	_ = godotenv.Load(envPath) // no error if .env doesn't exist

	envMap := map[string]string{}
	for _, e := range os.Environ() {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	ctx := templateContext{ENV: envMap}

	tmpl, err := template.New("config").Option("missingkey=error").Parse(input)
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer

	missingKeyRegex := regexp.MustCompile(`map has no entry for key "(.*?)"`)

	if err := tmpl.Execute(&output, ctx); err != nil {
		matches := missingKeyRegex.FindStringSubmatch(err.Error())
		if len(matches) == 2 {
			return nil, fmt.Errorf("missing environment variable: %s (set it in your shell or .env file)", matches[1])
		}
		return nil, fmt.Errorf("template error: %w", err)
	}

	return output.Bytes(), nil
}
