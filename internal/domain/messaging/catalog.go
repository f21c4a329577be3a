// Package messaging holds the agency's canned texts: quote templates, message
// templates, quick responses, clauses and keyword auto-responses.
package messaging

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type QuoteTemplate struct {
	Name      string `yaml:"name" json:"name"`
	Includes  string `yaml:"includes" json:"includes"`
	Excludes  string `yaml:"excludes" json:"excludes"`
	LegalText string `yaml:"legal_text" json:"legalText"`
}

type MessageTemplate struct {
	Name      string `yaml:"name" json:"name"`
	Body      string `yaml:"body" json:"body"`
	Trigger   string `yaml:"trigger" json:"trigger"`
	DaysAfter int    `yaml:"days_after" json:"daysAfter,omitempty"`
}

type QuickResponse struct {
	Shortcut string `yaml:"shortcut" json:"shortcut"`
	Text     string `yaml:"text" json:"text"`
}

type AutoRule struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Text     string   `yaml:"text" json:"text"`
}

type ClauseOption struct {
	ID   string `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`
}

type ClauseGroup struct {
	Name    string         `yaml:"name" json:"name"`
	Options []ClauseOption `yaml:"options" json:"options"`
}

type Catalog struct {
	QuoteTemplates   map[string]QuoteTemplate   `yaml:"quote_templates" json:"quoteTemplates"`
	MessageTemplates map[string]MessageTemplate `yaml:"message_templates" json:"messageTemplates"`
	QuickResponses   []QuickResponse            `yaml:"quick_responses" json:"quickResponses"`
	AutoResponses    []AutoRule                 `yaml:"auto_responses" json:"autoResponses"`
	Clauses          map[string]ClauseGroup     `yaml:"clauses" json:"clauses"`
}

// Parse decodes a catalogue document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("messaging: parse catalog: %w", err)
	}
	return &c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalogue. It panics if the embedded file is malformed.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
