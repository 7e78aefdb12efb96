package feed

import (
	"encoding/json"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec converts between bytes and a feed document.
type Codec interface {
	Decode(data []byte) (*Document, error)
	Encode(doc *Document) ([]byte, error)
	ContentType() string
}

// CodecFor picks a codec from a file or object name. YAML for .yaml and .yml, JSON otherwise.
func CodecFor(name string) Codec {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return YAMLCodec{}
	}
	return JSONCodec{}
}

// JSONCodec reads and writes indented JSON.
type JSONCodec struct{}

func (JSONCodec) Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (JSONCodec) Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (JSONCodec) ContentType() string { return "application/json" }

// YAMLCodec reads and writes YAML.
type YAMLCodec struct{}

func (YAMLCodec) Decode(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (YAMLCodec) Encode(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

func (YAMLCodec) ContentType() string { return "application/yaml" }
