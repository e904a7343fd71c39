package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/viralcut/internal/types"
)

// CaptionFile is the on-disk caption format. YAML and JSON are both
// accepted, either as a bare list or as a document with a timeline.
type CaptionFile struct {
	// Timeline is "segment" (default) or "source".
	Timeline string          `yaml:"timeline"`
	Captions []types.Caption `yaml:"captions"`
}

// LoadCaptions reads and validates a caption file.
func LoadCaptions(path string) (CaptionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CaptionFile{}, fmt.Errorf("read captions: %w", err)
	}

	var cf CaptionFile
	var list []types.Caption
	if err := yaml.Unmarshal(data, &list); err == nil {
		cf.Captions = list
	} else if err := yaml.Unmarshal(data, &cf); err != nil {
		return CaptionFile{}, fmt.Errorf("parse captions %s: %w", path, err)
	}

	switch cf.Timeline {
	case "", "segment", "source":
	default:
		return CaptionFile{}, fmt.Errorf("captions %s: unknown timeline %q", path, cf.Timeline)
	}
	if err := ValidateCaptions(cf.Captions); err != nil {
		return CaptionFile{}, fmt.Errorf("captions %s: %w", path, err)
	}
	return cf, nil
}

// ValidateCaptions rejects captions with a negative start or start >= end.
func ValidateCaptions(caps []types.Caption) error {
	for i, c := range caps {
		if math.IsNaN(c.StartSec) || math.IsNaN(c.EndSec) {
			return fmt.Errorf("caption %d: NaN time", i)
		}
		if c.StartSec < 0 {
			return fmt.Errorf("caption %d: negative start %.3f", i, c.StartSec)
		}
		if c.StartSec >= c.EndSec {
			return fmt.Errorf("caption %d: start %.3f >= end %.3f", i, c.StartSec, c.EndSec)
		}
	}
	if len(caps) == 0 {
		return errors.New("no captions")
	}
	return nil
}
