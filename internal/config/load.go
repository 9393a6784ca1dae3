// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "pb2obsidian"
	configType = "yaml"
)

// LoadDotEnv parses each .env file in order. Missing files are skipped.
func LoadDotEnv(paths ...string) ([]map[string]string, error) {
	var layers []map[string]string
	for _, p := range paths {
		if p == "" {
			continue
		}
		m, err := godotenv.Read(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		layers = append(layers, m)
	}
	return layers, nil
}

// LoadFile reads the YAML config file. With an explicit path the file must
// exist; otherwise pb2obsidian.yaml is searched for in searchDirs and its
// absence is not an error. It returns the values by key and the file used.
func LoadFile(path string, searchDirs ...string) (map[string]string, string, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		for _, d := range searchDirs {
			v.AddConfigPath(d)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return map[string]string{}, "", nil
		}
		return nil, "", fmt.Errorf("reading config file: %w", err)
	}

	values := make(map[string]string)
	for _, k := range v.AllKeys() {
		if !layered[k] {
			continue
		}
		values[k] = v.GetString(k)
	}
	return values, v.ConfigFileUsed(), nil
}

// DefaultSearchDirs returns the directories searched for the config file:
// the current directory, then ~/.config/pb2obsidian.
func DefaultSearchDirs() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", configName))
	}
	return dirs
}

// DotEnvPaths returns the .env files consulted, lowest precedence first:
// next to the executable, then in the working directory.
func DotEnvPaths(exeDir, workDir string) []string {
	var paths []string
	if exeDir != "" {
		paths = append(paths, filepath.Join(exeDir, ".env"))
	}
	if workDir != "" && workDir != exeDir {
		paths = append(paths, filepath.Join(workDir, ".env"))
	}
	return paths
}
