package lconfig

import (
	"encoding/json"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"k8s.io/apimachinery/pkg/api/resource"
)

// ConfigDirEnv names a directory holding one file per variable, as mounted from a ConfigMap or Secret.
const ConfigDirEnv = "CONFIG_DIR"

var parsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(resource.Quantity{}): func(v string) (interface{}, error) {
		return resource.ParseQuantity(v)
	},
	reflect.TypeOf(map[string]string{}): func(v string) (interface{}, error) {
		ret := make(map[string]string)
		err := json.Unmarshal([]byte(v), &ret)
		return ret, err
	},
}

// Parse fills v from the process environment, layered over CONFIG_DIR when it is set.
func Parse(v interface{}) error {
	environment, err := environment(afero.NewOsFs(), os.Getenv(ConfigDirEnv), os.Environ())
	if err != nil {
		return err
	}
	return errors.WithStack(env.ParseWithFuncs(v, parsers, env.Options{Environment: environment}))
}

func MustParse(v interface{}) {
	if err := Parse(v); err != nil {
		panic(err)
	}
}

// environment merges the files of dirPath with processEnv; process variables win.
func environment(fs afero.Fs, dirPath string, processEnv []string) (map[string]string, error) {
	merged := make(map[string]string)
	if dirPath != "" {
		dir, err := NewConfigDir(fs, dirPath)
		if err != nil {
			return nil, err
		}
		merged, err = dir.EnvironmentMap()
		if err != nil {
			return nil, err
		}
	}
	for _, entry := range processEnv {
		key, value, _ := strings.Cut(entry, "=")
		merged[key] = value
	}
	return merged, nil
}
