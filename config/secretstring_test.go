package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	yaml "gopkg.in/yaml.v3"
)

func TestSecretString(t *testing.T) {
	s := SecretString("password")

	if got := fmt.Sprintf("%v", s); got != SecretStringValue {
		t.Errorf("fmt output = %q, want %q", got, SecretStringValue)
	}
	if s.Reveal() != "password" {
		t.Errorf("Reveal() = %q, want password", s.Reveal())
	}

	data, err := json.Marshal(struct{ S SecretString }{s})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(data) != `{"S":"<secret>"}` {
		t.Errorf("json = %s", data)
	}

	data, err = yaml.Marshal(struct {
		S SecretString `yaml:"s"`
	}{s})
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), SecretStringValue) || strings.Contains(string(data), "password") {
		t.Errorf("yaml = %q", data)
	}
}

func TestSecretString_Empty(t *testing.T) {
	var s SecretString
	if s.String() != "" {
		t.Errorf("String() = %q, want empty", s.String())
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(data) != "null" {
		t.Errorf("json = %s, want null", data)
	}
}
