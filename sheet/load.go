package sheet

import (
	"encoding"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ghodss/yaml"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// LoadTemplate reads a YAML, JSON or TOML template file, chosen by extension.
func LoadTemplate(p string) (Template, error) {
	data, err := ioutil.ReadFile(p)
	if err != nil {
		return Template{}, errors.Wrapf(err, "failed to read template file %q", p)
	}
	t, err := ParseTemplate(data, filepath.Ext(p))
	if err != nil {
		return Template{}, errors.Wrapf(err, "failed to load template file %q", p)
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	}
	return t, nil
}

// ParseTemplate decodes a template from data in the format named by ext
// (".yaml", ".yml", ".json" or ".toml") and validates it.
// Unknown keys are rejected.
func ParseTemplate(data []byte, ext string) (Template, error) {
	raw, err := unmarshalMap(data, ext)
	if err != nil {
		return Template{}, err
	}
	var t Template
	if err := decodeOptions(raw, &t); err != nil {
		return Template{}, err
	}
	if err := t.Validate(); err != nil {
		return Template{}, invalidTemplate(err, t.Name)
	}
	return t, nil
}

// LoadValues reads raw field values from a YAML, JSON or TOML file.
func LoadValues(p string) (map[string]interface{}, error) {
	data, err := ioutil.ReadFile(p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read values file %q", p)
	}
	values, err := unmarshalMap(data, filepath.Ext(p))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load values file %q", p)
	}
	return values, nil
}

func unmarshalMap(data []byte, ext string) (map[string]interface{}, error) {
	values := make(map[string]interface{})
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal yaml")
		}
	case ".json":
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal json")
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &values); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal toml")
		}
	default:
		return nil, errors.Errorf("bad file extension %q. Must be YAML, JSON or TOML", ext)
	}
	return values, nil
}

func decodeOptions(options map[string]interface{}, c interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      c,
		DecodeHook:  decodeStringToTextUnmarshaler,
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize mapstructure decoder")
	}
	if err := dec.Decode(options); err != nil {
		return errors.Wrapf(err, "failed to decode options into %T", c)
	}
	return nil
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// decodeStringToTextUnmarshaler decodes a string into any type
// implementing encoding.TextUnmarshaler, such as FieldKind and FieldType.
func decodeStringToTextUnmarshaler(f, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	isPtr := true
	if t.Kind() != reflect.Ptr {
		isPtr = false
		t = reflect.PtrTo(t)
	}
	if !t.Implements(textUnmarshalerType) {
		return data, nil
	}
	value := reflect.New(t.Elem())
	tum := value.Interface().(encoding.TextUnmarshaler)
	if err := tum.UnmarshalText([]byte(data.(string))); err != nil {
		return nil, err
	}
	if isPtr {
		return value.Interface(), nil
	}
	return reflect.Indirect(value).Interface(), nil
}
