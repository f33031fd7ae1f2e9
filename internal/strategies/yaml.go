package strategies

import (
	"io"
	"os"

	"github.com/janpfeifer/freecellGo/internal/generics"
	"github.com/janpfeifer/freecellGo/internal/searchers"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// yamlFile is the layout of a strategies file:
//
//	strategies:
//	  - name: deep-needed
//	    description: Needed cards first, limited depth.
//	    base: needed
//	    max_depth: 400
//	    cache_size: 5000000
//
// Fields not set are taken from the base strategy, if given, or from the zero searchers.Policy.
type yamlFile struct {
	Strategies []yaml.Node `yaml:"strategies"`
}

type yamlHeader struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Base        string `yaml:"base"`
}

// yamlKnownKeys accepted for each strategy: the header plus the searchers.Policy fields.
var yamlKnownKeys = generics.SetWith(
	"name", "description", "base",
	"ancestors", "cache", "canonical", "bucketed", "ordering", "cache_size", "max_depth", "max_nodes")

// LoadYAML registers the strategies defined in the YAML document read from r, and returns their names.
// Strategies are registered in order, so later ones can use earlier ones as base.
func LoadYAML(r io.Reader) (names []string, err error) {
	var file yamlFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err = decoder.Decode(&file); err != nil {
		return nil, errors.Wrap(err, "failed to parse strategies YAML")
	}
	for ii := range file.Strategies {
		node := &file.Strategies[ii]
		if node.Kind != yaml.MappingNode {
			return names, errors.Errorf("strategy #%d (line %d) is not a mapping", ii, node.Line)
		}
		for jj := 0; jj < len(node.Content); jj += 2 {
			if key := node.Content[jj].Value; !yamlKnownKeys.Has(key) {
				return names, errors.Errorf("strategy #%d (line %d): unknown field %q", ii, node.Content[jj].Line, key)
			}
		}

		var header yamlHeader
		if err = node.Decode(&header); err != nil {
			return names, errors.Wrapf(err, "strategy #%d (line %d)", ii, node.Line)
		}
		var policy searchers.Policy
		if header.Base != "" {
			base, err := Lookup(header.Base)
			if err != nil {
				return names, errors.WithMessagef(err, "base of strategy %q", header.Name)
			}
			policy = base.Policy
		}
		if err = node.Decode(&policy); err != nil {
			return names, errors.Wrapf(err, "policy of strategy %q", header.Name)
		}
		if err = Register(header.Name, header.Description, policy); err != nil {
			return names, err
		}
		klog.V(1).Infof("Registered strategy %q: %s", header.Name, policy)
		names = append(names, header.Name)
	}
	return names, nil
}

// LoadFile registers the strategies defined in the given YAML file, see LoadYAML.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open strategies file")
	}
	defer func() { _ = f.Close() }()
	names, err := LoadYAML(f)
	if err != nil {
		return names, errors.WithMessagef(err, "loading strategies from %q", path)
	}
	return names, nil
}
