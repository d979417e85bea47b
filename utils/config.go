package utils

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config Runtime configuration loaded from a YAML file.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Sqlite struct {
		Filename string `yaml:"filename"`
	} `yaml:"sqlite"`
	Storage struct {
		AnnotationsDir string `yaml:"annotations_dir"`
		ImagesDir      string `yaml:"images_dir"`
	} `yaml:"storage"`
}

// NewConfig Read and parse the YAML configuration at configPath.
func NewConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ValidateConfigPath Make sure the path points to a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a config file", path)
	}
	return nil
}

// ParseFlags Parse the CLI flags and return the config path and debug mode.
func ParseFlags() (string, bool, error) {
	var configPath string
	var debugMode bool

	flag.StringVar(&configPath, "config", "./config.yml", "path to the YAML configuration file")
	flag.BoolVar(&debugMode, "debug", false, "run the server in debug mode")
	flag.Parse()

	if err := ValidateConfigPath(configPath); err != nil {
		return "", false, err
	}
	return configPath, debugMode, nil
}
