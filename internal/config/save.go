package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/hilite/internal/log"
)

// SaveLanguage writes lang into the languages section of the config file,
// replacing an entry with the same name (case-insensitive) or appending one.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveLanguage(configPath string, lang LanguageConfig) error {
	if lang.Name == "" {
		return fmt.Errorf("saving language: name is required")
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	langNode := &yaml.Node{}
	if err := langNode.Encode(lang); err != nil {
		return fmt.Errorf("building language node: %w", err)
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{Kind: yaml.MappingNode},
			},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}
	root := doc.Content[0]

	languages := lookupKey(root, "languages")
	if languages == nil || languages.Kind != yaml.SequenceNode {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		setKey(root, "languages", seq)
		languages = seq
	}

	replaced := false
	for i, item := range languages.Content {
		name := lookupKey(item, "name")
		if name != nil && strings.EqualFold(name.Value, lang.Name) {
			languages.Content[i] = langNode
			replaced = true
			break
		}
	}
	if !replaced {
		languages.Content = append(languages.Content, langNode)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := writeAtomic(configPath, buf.Bytes()); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to save language", err, "path", configPath, "language", lang.Name)
		return err
	}
	log.Info(log.CatConfig, "Saved language", "path", configPath, "language", lang.Name, "replaced", replaced)
	return nil
}

// lookupKey returns the value node for key in a mapping node, or nil.
func lookupKey(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// setKey replaces the value of key in a mapping node, or appends the pair.
func setKey(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
}

// writeAtomic writes data to a temp file next to path, then renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".hilite.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
