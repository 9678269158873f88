package translate

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

//go:embed prompts/translate.tmpl
var translatePrompt string

var translateTemplate = template.Must(template.New("translate").Parse(translatePrompt))

// TranslationPrompt renders the instruction sent for one text.
func TranslationPrompt(language, text string) (string, error) {
	var buf bytes.Buffer
	err := translateTemplate.Execute(&buf, struct {
		Language string
		Text     string
	}{language, text})
	if err != nil {
		return "", fmt.Errorf("failed to render translation prompt: %v", err)
	}
	return buf.String(), nil
}
