package mockdb

import (
	"io"

	yaml "gopkg.in/yaml.v2"
)

type ClassInfo struct {
	Name string `yaml:"name"`
}

type IndexInfo struct {
	Name  string `yaml:"name"`
	Class string `yaml:"class"`
}

type DatabaseInfo struct {
	Name    string      `yaml:"name"`
	Classes []ClassInfo `yaml:"classes"`
	Indexes []IndexInfo `yaml:"indexes"`
}

type Config struct {
	Databases []DatabaseInfo `yaml:"databases"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)

	return cfg, err
}
