package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/checkmate/internal/outline"
)

// YAMLParser reads a nested test plan:
//
//	title: Checkout
//	sections:
//	  - name: Payments
//	    cases:
//	      - title: Pay by card
//	        steps: [Open cart, Pay]
//	        expected: Order confirmed
//	    sections: [...]
type YAMLParser struct{}

type yamlPlan struct {
	Title    string        `yaml:"title"`
	Cases    []yamlCase    `yaml:"cases"`
	Sections []yamlSection `yaml:"sections"`
}

type yamlSection struct {
	Name     string        `yaml:"name"`
	Cases    []yamlCase    `yaml:"cases"`
	Sections []yamlSection `yaml:"sections"`
}

type yamlCase struct {
	Title         string    `yaml:"title"`
	Preconditions yamlLines `yaml:"preconditions"`
	Steps         yamlLines `yaml:"steps"`
	Expected      yamlLines `yaml:"expected"`
	Priority      string    `yaml:"priority"`
}

// yamlLines accepts a string or a list of strings.
type yamlLines string

func (l *yamlLines) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*l = yamlLines(n.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		*l = yamlLines(strings.Join(items, "\n"))
		return nil
	}
	return fmt.Errorf("line %d: expected a string or a list of strings", n.Line)
}

func (p *YAMLParser) Parse(r io.Reader, filename string) (*outline.Outline, error) {
	var plan yamlPlan
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	o := &outline.Outline{Title: plan.Title, Cases: yamlCases(plan.Cases)}
	if o.Title == "" {
		o.Title = titleFromFilename(filename)
	}
	for _, s := range plan.Sections {
		o.Children = append(o.Children, yamlNode(s))
	}
	return o, nil
}

func yamlNode(s yamlSection) *outline.Node {
	n := &outline.Node{Title: s.Name, Cases: yamlCases(s.Cases)}
	for _, c := range s.Sections {
		n.Children = append(n.Children, yamlNode(c))
	}
	return n
}

func yamlCases(in []yamlCase) []outline.Case {
	var out []outline.Case
	for _, c := range in {
		out = append(out, outline.Case{
			Title:          c.Title,
			Preconditions:  string(c.Preconditions),
			Steps:          string(c.Steps),
			ExpectedResult: string(c.Expected),
			Priority:       c.Priority,
		})
	}
	return out
}
