package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
	"github.com/cognicore/topicmine/pkg/topicmine/stoplist"
)

// Vocabulary represents a vocabulary override file
type Vocabulary struct {
	// Replace swaps out each built-in list that the file sets instead of
	// extending it.
	Replace   bool     `yaml:"replace"`
	Stopwords []string `yaml:"stopwords"`
	Noise     []string `yaml:"noise"`
	Layout    []string `yaml:"layout"`
	Metadata  []string `yaml:"metadata"`
	Billing   []string `yaml:"billing"`
	Breaking  []string `yaml:"breaking"`
	CoreTerms []string `yaml:"core_terms"`
}

// LoadVocabulary loads vocabulary overrides from a YAML file
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
	}

	return &v, nil
}

// Apply returns base with the overrides applied
func (v *Vocabulary) Apply(base stoplist.Vocabulary) stoplist.Vocabulary {
	if v == nil {
		return base
	}
	override := stoplist.Vocabulary{
		English:   v.Stopwords,
		Noise:     v.Noise,
		Layout:    v.Layout,
		Metadata:  v.Metadata,
		Billing:   v.Billing,
		Breaking:  v.Breaking,
		CoreTerms: v.CoreTerms,
	}
	if !v.Replace {
		return base.Merge(override)
	}

	out := base
	replace := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = append([]string(nil), src...)
		}
	}
	replace(&out.English, override.English)
	replace(&out.Noise, override.Noise)
	replace(&out.Layout, override.Layout)
	replace(&out.Metadata, override.Metadata)
	replace(&out.Billing, override.Billing)
	replace(&out.Breaking, override.Breaking)
	replace(&out.CoreTerms, override.CoreTerms)
	return out
}
