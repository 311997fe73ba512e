package config

import (
	"encoding/json"
	"fmt"
	"os"
)

var Config = DefaultConfiguration

var DefaultConfiguration = &Configuration{
	BuildDir: "dist",
	SrcDir:   "src",
	PagesDir: "pages",
	ServeConfig: ServeConfiguration{
		Redirect404:   "",
		Port:          8000,
		DisableReload: false,
	},
	Vars: map[string]string{},
}

type Configuration struct {
	BuildDir    string             `json:"build_directory,omitempty"`
	SrcDir      string             `json:"source_directory,omitempty"`
	PagesDir    string             `json:"pages_directory,omitempty"`
	ServeConfig ServeConfiguration `json:"serve_config,omitempty"`

	// Vars is handed to the build pipeline as-is, it is never interpreted
	// by the configuration layer itself.
	Vars map[string]string `json:"vars,omitempty"`
}

type ServeConfiguration struct {
	Redirect404   string `json:"redirect_404"`
	Port          int    `json:"port"`
	DisableReload bool   `json:"disable_reload"`
}

// DefaultFile is what Init falls back to and what the watcher ignores.
const DefaultFile = "emberfront.json"

func Init(configpath string) error {
	if configpath == "" {
		configpath = DefaultFile
	}

	_, err := os.Stat(configpath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("could not access configuration file %s: %v", configpath, err)
		}

		return nil
	}

	f, err := os.Open(configpath)
	if err != nil {
		return err
	}
	defer f.Close()

	err = json.NewDecoder(f).Decode(Config)
	if err != nil {
		return err
	}

	return nil
}
