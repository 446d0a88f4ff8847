package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// setting is one leaf of the configuration, addressed as "section.key".
type setting struct {
	key   string
	value reflect.Value
}

// settings walks the config sections and returns their leaves in key order.
func (c *Config) settings() []setting {
	var out []setting
	root := reflect.ValueOf(c).Elem()
	rootType := root.Type()

	for i := 0; i < root.NumField(); i++ {
		section := yamlKey(rootType.Field(i))
		sv := root.Field(i)
		st := sv.Type()
		for j := 0; j < sv.NumField(); j++ {
			key := yamlKey(st.Field(j))
			if key == "" {
				continue
			}
			out = append(out, setting{key: section + "." + key, value: sv.Field(j)})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func yamlKey(field reflect.StructField) string {
	tag := field.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	for _, s := range c.settings() {
		if s.key == key {
			return s.value, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("unknown configuration key: %s", key)
}

// Keys returns every configuration key, sorted.
func (c *Config) Keys() []string {
	all := c.settings()
	keys := make([]string, len(all))
	for i, s := range all {
		keys[i] = s.key
	}
	return keys
}

// SetValue sets a configuration value by its dotted key, e.g.
// "registry.base_url" or "build.jobs". Lists are comma separated.
func (c *Config) SetValue(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}

	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		field.SetInt(int64(d))
	case field.Kind() == reflect.String:
		field.SetString(value)
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		field.SetBool(b)
	case field.Kind() == reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		field.SetInt(int64(n))
	case field.Kind() == reflect.Slice:
		items := []string{}
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported configuration key: %s", key)
	}
	return nil
}

// GetValue returns the value of a configuration key as a string.
func (c *Config) GetValue(key string) (string, error) {
	field, err := c.lookup(key)
	if err != nil {
		return "", err
	}
	return format(field), nil
}

// ToMap returns every configuration key with its value.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)
	for _, s := range c.settings() {
		result[s.key] = format(s.value)
	}
	return result
}

func format(v reflect.Value) string {
	switch {
	case v.Type() == durationType:
		return time.Duration(v.Int()).String()
	case v.Kind() == reflect.String:
		return v.String()
	case v.Kind() == reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case v.Kind() == reflect.Int:
		return strconv.FormatInt(v.Int(), 10)
	case v.Kind() == reflect.Slice:
		items := make([]string, v.Len())
		for i := range items {
			items[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return strings.Join(items, ",")
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
