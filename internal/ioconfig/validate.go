package ioconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validate checks that the file at path is well-formed YAML before
// viper merges it over the defaults. A parse error naming the file
// beats the wrapped one viper produces. A missing file is fine; the
// defaults apply.
func Validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("malformed config file %s: %w", path, err)
	}
	return nil
}
