package main

import (
	"os"

	"github.com/binzume/vrmparser/scene"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Config is read from the file given by --config. Flags override it.
type Config struct {
	Format     string   `yaml:"format"`
	Profiles   []string `yaml:"profiles"`
	Thumbnail  bool     `yaml:"thumbnail"`
	Extensions bool     `yaml:"extensions"`
}

func loadConfig(path string) (*Config, error) {
	conf := &Config{Format: "json"}
	if path == "" {
		return conf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalStrict(data, conf); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return conf, nil
}

func (c *Config) sceneProfiles() ([]scene.Profile, error) {
	var profiles []scene.Profile
	for _, name := range c.Profiles {
		p, ok := scene.ProfileByName(name)
		if !ok {
			return nil, errors.Errorf("unknown profile: %s", name)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
