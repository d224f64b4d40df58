package config

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// AttributeMap is a loosely typed set of attributes, decoded into a typed config on demand.
type AttributeMap map[string]interface{}

// Has returns whether the attribute is set.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// TransformAttributeMap decodes attributes into a T using the json field tags of T. Attributes
// that T has no field for are an error.
func TransformAttributeMap[T any](attributes AttributeMap) (T, error) {
	var out T

	var forResult interface{}
	toT := reflect.TypeOf(out)
	if toT == nil {
		return out, nil
	}
	if toT.Kind() == reflect.Ptr {
		var ok bool
		out, ok = reflect.New(toT.Elem()).Interface().(T)
		if !ok {
			return out, errors.Errorf("failed to allocate default config type %T", out)
		}
		forResult = out
	} else {
		forResult = &out
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           forResult,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return out, err
	}
	if len(md.Unused) != 0 {
		return out, errors.Errorf("unknown attributes %v for %T", md.Unused, out)
	}
	return out, nil
}
