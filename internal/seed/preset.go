package seed

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yml
var presetFS embed.FS

// Preset sizes a seeding run. An empty Faculties list uses BuiltInFaculties.
type Preset struct {
	Name               string        `yaml:"name"`
	Faculties          []FacultySpec `yaml:"faculties"`
	Students           int           `yaml:"students"`
	Advisors           int           `yaml:"advisors"`
	Theses             int           `yaml:"theses"`
	CommentsPerThesis  int           `yaml:"comments_per_thesis"`
	ReplyRatio         float64       `yaml:"reply_ratio"`
	PendingRatio       float64       `yaml:"pending_ratio"`
	CitationsPerThesis int           `yaml:"citations_per_thesis"`
	ViewsPerThesis     int           `yaml:"views_per_thesis"`
	ViewDays           int           `yaml:"view_days"`
}

// ParsePreset decodes a YAML preset and checks its bounds.
func ParsePreset(raw []byte) (Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Preset{}, fmt.Errorf("decode preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// LoadPreset resolves name against the embedded presets first and the
// filesystem second.
func LoadPreset(name string) (Preset, error) {
	raw, err := fs.ReadFile(presetFS, "presets/"+strings.TrimSuffix(name, ".yml")+".yml")
	if errors.Is(err, fs.ErrNotExist) {
		raw, err = os.ReadFile(name)
	}
	if err != nil {
		return Preset{}, fmt.Errorf("load preset %q: %w", name, err)
	}
	return ParsePreset(raw)
}

// Validate rejects negative sizes and ratios outside [0, 1].
func (p Preset) Validate() error {
	for field, n := range map[string]int{
		"students":             p.Students,
		"advisors":             p.Advisors,
		"theses":               p.Theses,
		"comments_per_thesis":  p.CommentsPerThesis,
		"citations_per_thesis": p.CitationsPerThesis,
		"views_per_thesis":     p.ViewsPerThesis,
		"view_days":            p.ViewDays,
	} {
		if n < 0 {
			return fmt.Errorf("preset %s must not be negative", field)
		}
	}
	if p.ReplyRatio < 0 || p.ReplyRatio > 1 {
		return fmt.Errorf("preset reply_ratio must be between 0 and 1")
	}
	if p.PendingRatio < 0 || p.PendingRatio > 1 {
		return fmt.Errorf("preset pending_ratio must be between 0 and 1")
	}
	if p.Theses > 0 && p.Students == 0 {
		return fmt.Errorf("preset needs students to author theses")
	}
	return nil
}

func (p Preset) faculties() []FacultySpec {
	if len(p.Faculties) == 0 {
		return BuiltInFaculties
	}
	return p.Faculties
}
