package config

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
)

// URLValues is a struct that holds variables we make available for URL
// template expansion.
type URLValues struct {
	Context  string
	Number   int // 1-based story number
	Index    int // 0-based story index
	Language string
	RepoURL  string
}

// StoryURLValues prepares values for story with 0-based index.
func StoryURLValues(index int, lang, repoURL string) URLValues {
	return URLValues{
		Number:   index + 1,
		Index:    index,
		Language: lang,
		RepoURL:  repoURL,
	}
}

func parseURLTemplate(name TemplateFieldName, field string) (*template.Template, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Option("missingkey=error").Parse(field)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template field %s: %w", name, err)
	}
	return tmpl, nil
}

// ExpandURL expands one of the URL template fields.
func ExpandURL(name TemplateFieldName, field string, values URLValues) (string, error) {
	if len(field) == 0 {
		return "", fmt.Errorf("template field %s is empty", name)
	}
	tmpl, err := parseURLTemplate(name, field)
	if err != nil {
		return "", err
	}
	values.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to expand template field %s: %w", name, err)
	}
	return buf.String(), nil
}

// StoryFileName returns zero-padded 1-based story number with extension,
// used to name per-story documents in reports and caches.
func StoryFileName(index int, ext string) string {
	return fmt.Sprintf("%02d%s", index+1, ext)
}
