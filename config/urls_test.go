package config

import (
	"strings"
	"testing"
)

func TestExpandURL(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		values URLValues
		want   string
	}{
		{
			name:   "text",
			field:  `{{ .RepoURL }}/raw/branch/master/content/{{ printf "%02d" .Number }}.md`,
			values: StoryURLValues(0, "en", "https://example.org/org/en_obs"),
			want:   "https://example.org/org/en_obs/raw/branch/master/content/01.md",
		},
		{
			name:   "timing",
			field:  `data/img_pos{{ printf "%02d" .Number }}.json`,
			values: StoryURLValues(49, "en", ""),
			want:   "data/img_pos50.json",
		},
		{
			name:   "sprig functions",
			field:  `audio/{{ .Language | upper }}/{{ .Index }}.mp3`,
			values: StoryURLValues(4, "fr", ""),
			want:   "audio/FR/4.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandURL(TextURLTemplateFieldName, tt.field, tt.values)
			if err != nil {
				t.Fatalf("ExpandURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpandURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandURL_Errors(t *testing.T) {
	if _, err := ExpandURL(AudioURLTemplateFieldName, "", URLValues{}); err == nil {
		t.Error("ExpandURL() expected error for empty template")
	}
	if _, err := ExpandURL(AudioURLTemplateFieldName, "{{ .Missing }}", URLValues{}); err == nil {
		t.Error("ExpandURL() expected error for unknown field")
	}
	_, err := ExpandURL(TimingURLTemplateFieldName, "{{ .Number", URLValues{})
	if err == nil || !strings.Contains(err.Error(), string(TimingURLTemplateFieldName)) {
		t.Errorf("ExpandURL() error = %v, want parse error naming the field", err)
	}
}

func TestStoryFileName(t *testing.T) {
	if got := StoryFileName(0, ".md"); got != "01.md" {
		t.Errorf("StoryFileName(0) = %q, want 01.md", got)
	}
	if got := StoryFileName(99, ".json"); got != "100.json" {
		t.Errorf("StoryFileName(99) = %q, want 100.json", got)
	}
}
