package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	CatalogConfig struct {
		ArchiveURL   string `yaml:"archive_url" validate:"required"`
		SummaryEntry string `yaml:"summary_entry" validate:"required"`
		DataFileName string `yaml:"data_file_name" validate:"required"`
	}

	StoriesConfig struct {
		Count             int    `yaml:"count" validate:"min=1,max=999"`
		Workers           int    `yaml:"workers" validate:"min=1,max=64"`
		RepoURL           string `yaml:"repo_url" validate:"omitempty,url"`
		SearchURL         string `yaml:"catalog_search_url" validate:"omitempty,url"`
		Subject           string `yaml:"subject"`
		Stage             string `yaml:"stage" validate:"omitempty,oneof=prod preprod draft latest"`
		TextURLTemplate   string `yaml:"text_url_template" validate:"required"`
		TimingURLTemplate string `yaml:"timing_url_template"`
		AudioURLTemplate  string `yaml:"audio_url_template"`

		// catalog language code -> language id used by catalog search
		PublishedIDs map[string]string `yaml:"published_ids,omitempty"`
	}

	FetchConfig struct {
		Timeout   time.Duration `yaml:"timeout" validate:"min=1s"`
		UserAgent string        `yaml:"user_agent"`
		Token     SecretString  `yaml:"token,omitempty"`
		CacheDir  string        `yaml:"cache_dir,omitempty" validate:"omitempty,dirpath"`
	}

	PlaybackConfig struct {
		PollInterval  time.Duration `yaml:"poll_interval" validate:"min=10ms,max=5s"`
		DefaultVolume float64       `yaml:"default_volume" validate:"gte=0,lte=1"`
	}

	// Empty Path keeps preferences in memory only.
	PreferencesConfig struct {
		Path string `yaml:"path,omitempty" validate:"omitempty,filepath"`
	}

	Config struct {
		Version     int               `yaml:"version" validate:"eq=1"`
		Catalog     CatalogConfig     `yaml:"catalog"`
		Stories     StoriesConfig     `yaml:"stories"`
		Fetch       FetchConfig       `yaml:"fetch"`
		Playback    PlaybackConfig    `yaml:"playback"`
		Preferences PreferencesConfig `yaml:"preferences"`
		Logging     LoggingConfig     `yaml:"logging"`
		Reporting   ReporterConfig    `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, gencfg addresses fields by
	// their yaml names
	TextURLTemplateFieldName   TemplateFieldName = "text_url_template"
	TimingURLTemplateFieldName TemplateFieldName = "timing_url_template"
	AudioURLTemplateFieldName  TemplateFieldName = "audio_url_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(TextURLTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(TimingURLTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(AudioURLTemplateFieldName)),
)

// checkTemplates makes sure URL templates could be parsed before anything
// tries to expand them.
func checkTemplates(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	for _, f := range []struct {
		field, name string
		value       string
	}{
		{"TextURLTemplate", string(TextURLTemplateFieldName), cfg.Stories.TextURLTemplate},
		{"TimingURLTemplate", string(TimingURLTemplateFieldName), cfg.Stories.TimingURLTemplate},
		{"AudioURLTemplate", string(AudioURLTemplateFieldName), cfg.Stories.AudioURLTemplate},
	} {
		if len(f.value) == 0 {
			continue
		}
		if _, err := parseURLTemplate(TemplateFieldName(f.name), f.value); err != nil {
			sl.ReportError(f.value, f.name, f.field, "url_template", "")
		}
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkTemplates)); err != nil {
			return nil, fmt.Errorf("configuration is not valid: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

// Dump returns active configuration as YAML, secrets are masked.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
