// Copyright 2025 The HDX Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pdk

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk description of a PDK installation.
type Config struct {
	// ModelLib is the path of the model library. A relative path is
	// resolved against the directory of the config file.
	ModelLib string `yaml:"model_lib"`

	// Corners maps corner names (typ, fast, slow) to model library
	// sections.
	Corners map[string]string `yaml:"corners"`
}

var _ Installation = (*Config)(nil)

// LoadConfig reads a YAML installation config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading PDK config")
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing PDK config %s", path)
	}
	if cfg.ModelLib != "" && !filepath.IsAbs(cfg.ModelLib) {
		cfg.ModelLib = filepath.Join(filepath.Dir(path), cfg.ModelLib)
	}
	return cfg, nil
}

// Include implements [Installation] over the config's corner table.
func (c *Config) Include(corner Corner) (Lib, error) {
	section, ok := c.Corners[corner.String()]
	if !ok {
		return Lib{}, errors.Errorf("no %s section for model library %s", corner, c.ModelLib)
	}
	return Lib{Path: c.ModelLib, Section: section}, nil
}

// FindModelRoot returns the root directory of the Go module enclosing
// dir, under which PDK packages conventionally vendor their model
// libraries and installation configs.
func FindModelRoot(dir string) (string, error) {
	root := findGoMod(dir)
	if root == "" {
		return "", errors.Errorf("directory %q is not in a Go module: cannot find go.mod", dir)
	}
	modPath := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(modPath)
	if err != nil {
		return "", errors.Wrapf(err, "cannot read %s", modPath)
	}
	mod, err := modfile.Parse(modPath, data, nil)
	if err != nil {
		return "", errors.Wrapf(err, "cannot parse %s", modPath)
	}
	if mod.Module == nil {
		return "", errors.Errorf("%s declares no module", modPath)
	}
	return root, nil
}

// findGoMod walks up from dir to the nearest directory holding a
// go.mod file.
func findGoMod(dir string) string {
	dir = filepath.Clean(dir)
	for {
		if fi, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !fi.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
