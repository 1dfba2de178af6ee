package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/f4ah6o/webserver/internal/response"
)

// ParseYAML decodes a YAML document. Node-level decoding keeps the header
// order and lets every field be type checked exactly.
func ParseYAML(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML config: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("config document is empty")
	}

	server := lookup(resolve(doc.Content[0]), "server")
	if server == nil || server.Kind != yaml.MappingNode {
		return nil, errors.New("`server` section is missing")
	}

	c := newConfig()

	port := lookup(server, "port")
	if port == nil || port.ShortTag() != "!!int" {
		return nil, errors.New("`port` should be an integer")
	}
	var p int64
	if err := port.Decode(&p); err != nil {
		return nil, fmt.Errorf("`port` should be an integer: %w", err)
	}
	if err := c.setPort(p); err != nil {
		return nil, err
	}

	var err error
	if c.Prefix, err = stringField(server, "prefix"); err != nil {
		return nil, err
	}
	if c.BasePath, err = stringField(server, "path"); err != nil {
		return nil, err
	}

	headers := lookup(server, "headers")
	if headers == nil || headers.Kind != yaml.SequenceNode {
		return nil, errors.New("`headers` should be an array")
	}
	for i, entry := range headers.Content {
		h, err := yamlHeader(resolve(entry), i+1)
		if err != nil {
			return nil, err
		}
		c.Headers = append(c.Headers, h)
	}

	if n := lookup(server, "workers"); n != nil {
		var workers int64
		if n.ShortTag() != "!!int" || n.Decode(&workers) != nil {
			return nil, errors.New("`workers` should be an integer")
		}
		if err := c.setWorkers(workers); err != nil {
			return nil, err
		}
	}

	if n := lookup(server, "allow_traversal"); n != nil {
		if n.ShortTag() != "!!bool" || n.Decode(&c.AllowTraversal) != nil {
			return nil, errors.New("`allow_traversal` should be a boolean")
		}
	}

	return c, nil
}

// yamlHeader takes the first pair of a mapping entry; index is 1-based.
func yamlHeader(n *yaml.Node, index int) (response.Header, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) < 2 {
		return response.Header{}, fmt.Errorf("header should be a key-value pair (header index: %d)", index)
	}
	name, value := resolve(n.Content[0]), resolve(n.Content[1])
	if name.ShortTag() != "!!str" {
		return response.Header{}, fmt.Errorf("header name should be a string (header index: %d)", index)
	}
	if value.ShortTag() != "!!str" {
		return response.Header{}, fmt.Errorf("header value should be a string (header index: %d)", index)
	}
	return response.Header{Name: name.Value, Value: value.Value}, nil
}

func stringField(m *yaml.Node, key string) (string, error) {
	n := lookup(m, key)
	if n == nil || n.ShortTag() != "!!str" {
		return "", fmt.Errorf("`%s` must be a string", key)
	}
	return n.Value, nil
}

// lookup returns the value node for key in mapping m, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolve(m.Content[i+1])
		}
	}
	return nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}
