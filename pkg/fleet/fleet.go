// Package fleet loads the YAML instance inventories used by bulk admin
// operations.
package fleet

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Instance identifies one platform deployment by base URL.
type Instance struct {
	Name string `yaml:"name,omitempty"`
	URL  string `yaml:"url"`
}

// Fleet is an ordered inventory of platform instances. Order is
// significant: bulk operations visit instances exactly as listed.
type Fleet struct {
	Name      string     `yaml:"name,omitempty"`
	Instances []Instance `yaml:"instances"`
}

// Load reads and validates a YAML fleet inventory file.
func Load(path string) (*Fleet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := &Fleet{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse fleet file: %w", err)
	}
	if len(f.Instances) == 0 {
		return nil, fmt.Errorf("fleet file %s contains no instances", path)
	}
	for i, inst := range f.Instances {
		if inst.URL == "" {
			return nil, fmt.Errorf("instances[%d].url is required", i)
		}
		u, err := url.Parse(inst.URL)
		if err != nil {
			return nil, fmt.Errorf("instances[%d].url: %w", i, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("instances[%d].url must be an http(s) base URL, got %q", i, inst.URL)
		}
	}
	return f, nil
}

// URLs returns the instance base URLs in inventory order. Duplicates are
// kept; bulk operations call each occurrence.
func (f *Fleet) URLs() []string {
	urls := make([]string, 0, len(f.Instances))
	for _, inst := range f.Instances {
		urls = append(urls, inst.URL)
	}
	return urls
}
