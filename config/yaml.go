package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

func parseYaml(out interface{}, blob []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(blob))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("can't parse yaml: %w", err)
	}
	return nil
}

// decodeNode decodes a yaml node through a strict decoder, node.Decode alone
// does not reject unknown fields.
func decodeNode(node *yaml.Node, out interface{}) error {
	blob, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("can't encode yaml node: %w", err)
	}
	return parseYaml(out, blob)
}
