package output

import (
	"encoding/json"

	"github.com/rpgo/buyhold/internal/domain"
	"gopkg.in/yaml.v3"
)

// JSONFormatter serializes the batch as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(results *domain.BatchResult) ([]byte, error) {
	return json.MarshalIndent(results, "", "  ")
}

// YAMLFormatter serializes the batch as YAML.
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(results *domain.BatchResult) ([]byte, error) {
	return yaml.Marshal(results)
}
