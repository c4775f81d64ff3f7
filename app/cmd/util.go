package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// readConfigMap deserializes config.yaml into a generic map for dotted
// lookups. A missing file is an empty map.
func readConfigMap(path string) (map[string]interface{}, error) {
	data := map[string]interface{}{}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// writeConfigMap persists the config map back to YAML, creating directories.
func writeConfigMap(path string, data map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// getConfigValue traverses a nested map using dotted notation.
func getConfigValue(data map[string]interface{}, key string) (interface{}, bool) {
	var current interface{} = data
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// setConfigValue mutates/creates nested keys referenced via dotted notation.
func setConfigValue(data map[string]interface{}, key string, value interface{}) error {
	parts := strings.Split(key, ".")
	current := data
	for i, part := range parts {
		if i == len(parts)-1 {
			current[part] = value
			return nil
		}
		next, ok := current[part].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[part] = next
		}
		current = next
	}
	return nil
}

// parseValue coerces CLI input into bool/int before storing.
func parseValue(input string) interface{} {
	if b, err := strconv.ParseBool(input); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(input, 10, 64); err == nil {
		return i
	}
	return input
}

// prettyValue renders nested values in a one-line readable form.
func prettyValue(v interface{}) string {
	switch value := v.(type) {
	case map[string]interface{}:
		raw, _ := yaml.Marshal(value)
		return strings.TrimSpace(string(raw))
	default:
		return fmt.Sprint(value)
	}
}
