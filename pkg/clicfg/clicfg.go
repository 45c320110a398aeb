// Package clicfg copies urfave/cli flag values into a config struct using
// `flag:"..."` field tags. Fields without a tag keep their current value.
package clicfg

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/urfave/cli/v3"
)

var ErrCannotParseFlags = errors.New("cannot parse flags")

var (
	durationType    = reflect.TypeOf(time.Duration(0))
	stringSliceType = reflect.TypeOf([]string(nil))
)

func ParseFlags(c *cli.Command, s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: expected pointer to struct, got %T", ErrCannotParseFlags, s)
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)

		name := field.Tag.Get("flag")
		if name == "" || !value.CanSet() {
			continue
		}

		switch {
		case field.Type == durationType:
			value.Set(reflect.ValueOf(c.Duration(name)))
		case field.Type == stringSliceType:
			value.Set(reflect.ValueOf(c.StringSlice(name)))
		default:
			switch field.Type.Kind() {
			case reflect.String:
				value.SetString(c.String(name))
			case reflect.Bool:
				value.SetBool(c.Bool(name))
			case reflect.Int, reflect.Int64:
				value.SetInt(int64(c.Int(name)))
			default:
				return fmt.Errorf("%w: unsupported field type %s for flag %q", ErrCannotParseFlags, field.Type, name)
			}
		}
	}

	return nil
}
