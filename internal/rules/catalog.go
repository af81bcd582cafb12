package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the global, read-only set of badges and achievements
type Catalog struct {
	Version int             `yaml:"version" json:"version"`
	Rewards []models.Reward `yaml:"rewards" json:"rewards"`
}

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i := range c.Rewards {
		if c.Rewards[i].Kind == "" {
			c.Rewards[i].Kind = constants.RewardBadge
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ids are unique and every requirement is known
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Rewards))
	for _, r := range c.Rewards {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("reward %q has no id", r.Name)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate reward id %q", r.ID)
		}
		seen[r.ID] = true

		if r.Kind != constants.RewardBadge && r.Kind != constants.RewardAchievement {
			return fmt.Errorf("reward %q: unknown kind %q", r.ID, r.Kind)
		}
		if !Supported(r.Requirement.Type) {
			return fmt.Errorf("reward %q: unknown requirement type %q", r.ID, r.Requirement.Type)
		}
		if r.Requirement.Value <= 0 {
			return fmt.Errorf("reward %q: requirement value must be positive", r.ID)
		}
	}
	return nil
}

// Lookup returns the reward with the given id
func (c *Catalog) Lookup(id string) (models.Reward, bool) {
	for _, r := range c.Rewards {
		if r.ID == id {
			return r, true
		}
	}
	return models.Reward{}, false
}
