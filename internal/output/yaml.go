package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/harrylevesque/idqr/internal/models"
)

// YAMLFormatter outputs records in YAML, keeping the JSON key names and order.
type YAMLFormatter struct{}

// WriteRecord writes a single record as a YAML mapping.
func (f *YAMLFormatter) WriteRecord(w io.Writer, rec models.IdentityRecord) error {
	return writeYAML(w, recordNode(rec))
}

// WriteBatch writes the named records as a YAML sequence.
func (f *YAMLFormatter) WriteBatch(w io.Writer, items []BatchItem) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, item := range items {
		seq.Content = append(seq.Content, mapping(
			"name", scalar(item.Name),
			"record", recordNode(item.Record),
		))
	}
	return writeYAML(w, seq)
}

func writeYAML(w io.Writer, n *yaml.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return err
	}
	return enc.Close()
}

func recordNode(rec models.IdentityRecord) *yaml.Node {
	var kv []any
	for _, f := range rec.Fields() {
		kv = append(kv, f.Key, scalar(f.Value))
	}
	kv = append(kv, "rawData", scalar(rec.RawData))
	if rec.ParseError != "" {
		kv = append(kv, "parseError", scalar(rec.ParseError))
	}
	return mapping(kv...)
}

// mapping builds an ordered mapping node from alternating keys and values.
func mapping(kv ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Content = append(n.Content, scalar(kv[i].(string)), kv[i+1].(*yaml.Node))
	}
	return n
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
