package mockdb

import (
	"bytes"
	"testing"

	"github.com/matryer/is"
)

func TestLoadConfig(t *testing.T) {
	is, config := setupConfigTest(t)

	is.Equal(len(config.Databases), 1) // should have a single database
}

func TestLoadDatabase(t *testing.T) {
	is, config := setupConfigTest(t)
	database := config.Databases[0]

	is.Equal(database.Name, "prydain")
	is.Equal(len(database.Classes), 2) // should find two classes
	is.Equal(database.Classes[0].Name, "spells")
}

func TestLoadIndexes(t *testing.T) {
	is, config := setupConfigTest(t)
	database := config.Databases[0]

	is.Equal(len(database.Indexes), 1) // should find a single index
	is.Equal(database.Indexes[0].Name, "all_spells")
	is.Equal(database.Indexes[0].Class, "spells")
}

func setupConfigTest(t *testing.T) (*is.I, *Config) {
	is := is.New(t)
	cfgData := bytes.NewBuffer([]byte(configFile))
	config, err := LoadConfiguration(cfgData)
	is.NoErr(err)

	return is, config
}

const configFile string = `
databases:
  - name: prydain
    classes:
      - name: spells
      - name: characters
    indexes:
      - name: all_spells
        class: spells
`
