package lconfig

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

type ConfigDir struct {
	fs afero.Fs
}

func NewConfigDir(fs afero.Fs, dirPath string) (*ConfigDir, error) {
	if dirPath == "" {
		return nil, fmt.Errorf("empty config dir path")
	}
	stat, err := fs.Stat(dirPath)
	if err != nil {
		return nil, errors.Wrap(err, "config dir")
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("config dir %s is not a directory", dirPath)
	}
	return &ConfigDir{fs: afero.NewBasePathFs(fs, dirPath)}, nil
}

// EnvironmentMap reads every top-level file as one variable named after the file, trimmed of surrounding
// whitespace. Dot entries are skipped; Kubernetes volume mounts keep their ..data links there.
func (config *ConfigDir) EnvironmentMap() (map[string]string, error) {
	entries, err := afero.ReadDir(config.fs, string(os.PathSeparator))
	if err != nil {
		return nil, err
	}
	envMap := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || entry.IsDir() {
			continue
		}
		value, err := config.read(name)
		if err != nil {
			return nil, errors.Wrapf(err, "config value %s", name)
		}
		envMap[name] = value
	}
	return envMap, nil
}

func (config *ConfigDir) read(name string) (string, error) {
	file, err := config.fs.Open(name)
	if err != nil {
		return "", err
	}
	defer file.Close()
	contents, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(contents)), nil
}
