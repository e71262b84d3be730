// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Configuration.

package hemi

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

const ( // sizes
	K = 1 << 10
	M = 1 << 20
)

// Size is a byte size written like 4096, "4KiB" or "16MB" in config.
type Size int64

func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	n, err := humanize.ParseBytes(node.Value)
	if err != nil {
		return errors.Annotatef(err, "line %d: bad size %q", node.Line, node.Value)
	}
	*s = Size(n)
	return nil
}
func (s Size) MarshalYAML() (any, error) { return humanize.IBytes(uint64(s)), nil }
func (s Size) String() string            { return humanize.IBytes(uint64(s)) }

// Config
type Config struct {
	Listen      string `yaml:"listen"`      // web interface address
	Debug       int32  `yaml:"debug"`       // debug level. 0 means disable, max is 2
	MaxBodySize Size   `yaml:"maxBodySize"` // max size of content accepted by the web interface
	ArenaChunk  Size   `yaml:"arenaChunk"`  // preferred chunk size of parsing arenas
	Logging     string `yaml:"logging"`     // loggo config, like "<root>=INFO"
}

func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:9528",
		Debug:       0,
		MaxBodySize: 16 * M,
		ArenaChunk:  4 * K,
		Logging:     "",
	}
}

// ConfigFromText parses YAML text over the defaults.
func ConfigFromText(text string) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(text), config); err != nil {
		return nil, errors.Annotate(err, "cannot parse config")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return config, nil
}
func ConfigFromFile(path string) (*Config, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "cannot read config %q", path)
	}
	config, err := ConfigFromText(string(text))
	if err != nil {
		return nil, errors.Annotatef(err, "config %q", path)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.NotValidf("empty listen address")
	}
	if c.Debug < 0 || c.Debug > 2 {
		return errors.NotValidf("debug level %d", c.Debug)
	}
	if c.MaxBodySize <= 0 {
		return errors.NotValidf("maxBodySize %s", c.MaxBodySize)
	}
	if c.ArenaChunk <= 0 || c.ArenaChunk >= 64*K {
		return errors.NotValidf("arenaChunk %s", c.ArenaChunk)
	}
	return nil
}

// Apply sets debug level and logging of the program.
func (c *Config) Apply() error {
	SetDebugLevel(c.Debug)
	return configureLoggers(c.Logging)
}

func (c *Config) Text() string {
	text, err := yaml.Marshal(c)
	if err != nil {
		BugExitln(err.Error())
	}
	return string(text)
}
