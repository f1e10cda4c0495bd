package circuit

import (
	"reflect"
	"slices"
	"strings"

	"github.com/hdx-org/hdx/base/stringseq"
	"github.com/pkg/errors"
)

// Opt is an optional parameter value. The zero value is unset. Opt is
// comparable whenever T is, which keeps parameter structs carrying
// optionals usable as value-equality cache keys.
type Opt[T comparable] struct {
	// Val is the held value, meaningful only when Set.
	Val T

	// Set reports whether a value is held.
	Set bool
}

// Some returns a set optional holding v.
func Some[T comparable](v T) Opt[T] {
	return Opt[T]{Val: v, Set: true}
}

// Get returns the held value and whether it is set.
func (o Opt[T]) Get() (T, bool) {
	return o.Val, o.Set
}

// Or returns the held value, or def when unset.
func (o Opt[T]) Or(def T) T {
	if !o.Set {
		return def
	}
	return o.Val
}

func (o Opt[T]) optValue() (any, bool) {
	return o.Val, o.Set
}

// optional lets reflection-driven code unwrap an Opt without knowing
// its type argument.
type optional interface {
	optValue() (any, bool)
}

// ParamField is one named parameter extracted from a parameter struct.
type ParamField struct {
	// Name is the serialized parameter name.
	Name string

	// Value is the field value, with optionals unwrapped. An unset
	// optional yields a nil Value.
	Value any
}

// paramName returns the serialized name of a parameter struct field:
// its `param` tag when present, its lower-cased Go name otherwise.
func paramName(f reflect.StructField) string {
	if name := f.Tag.Get("param"); name != "" {
		return name
	}
	return strings.ToLower(f.Name)
}

// ParamFields flattens a parameter struct (or pointer to one) into its
// named fields, in declaration order. Unexported fields are skipped.
func ParamFields(params any) ([]ParamField, error) {
	v := reflect.ValueOf(params)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, errors.Errorf("invalid parameter value: nil %s", v.Type())
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, errors.Errorf("invalid parameter value %T: not a struct", params)
	}
	t := v.Type()
	fields := make([]ParamField, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := paramName(f)
		value := v.Field(i).Interface()
		if opt, ok := value.(optional); ok {
			inner, set := opt.optValue()
			if !set {
				fields = append(fields, ParamField{Name: name})
				continue
			}
			value = inner
		}
		fields = append(fields, ParamField{Name: name, Value: value})
	}
	return fields, nil
}

// BindParams builds a value of parameter struct type t from named
// field values, the inverse of [ParamFields]. Names missing from
// values leave their field at its zero value; names not declared by t
// are an error. Integer, float, and string values convert to the
// field's type, including into an Opt of it.
func BindParams(t reflect.Type, values map[string]any) (any, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.Errorf("invalid parameter type %v: not a struct", t)
	}
	v := reflect.New(t).Elem()
	bound := 0
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		raw, ok := values[paramName(f)]
		if !ok {
			continue
		}
		target := v.Field(i)
		if _, ok := target.Interface().(optional); ok {
			target.FieldByName("Set").SetBool(true)
			target = target.FieldByName("Val")
		}
		converted, err := convertParam(raw, target.Type())
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s of %s", paramName(f), t)
		}
		target.Set(converted)
		bound++
	}
	if bound != len(values) {
		return nil, errors.Errorf("unknown parameters %s for %s", unknownParams(t, values), t)
	}
	return v.Interface(), nil
}

// convertParam converts a wire parameter value into field type t,
// allowing conversions only within the value's kind class.
func convertParam(raw any, t reflect.Type) (reflect.Value, error) {
	rv := reflect.ValueOf(raw)
	var ok bool
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		ok = t.Kind() >= reflect.Int && t.Kind() <= reflect.Int64
	case reflect.Float32, reflect.Float64:
		ok = t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
	case reflect.String:
		ok = t.Kind() == reflect.String
	}
	if !ok || !rv.Type().ConvertibleTo(t) {
		return reflect.Value{}, errors.Errorf("cannot use %T value %v as %s", raw, raw, t)
	}
	return rv.Convert(t), nil
}

// unknownParams lists the value names t declares no field for.
func unknownParams(t reflect.Type, values map[string]any) string {
	declared := make(map[string]bool)
	for i := range t.NumField() {
		if f := t.Field(i); f.IsExported() {
			declared[paramName(f)] = true
		}
	}
	var unknown []string
	for name := range values {
		if !declared[name] {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	return stringseq.JoinQuoted(slices.Values(unknown), ", ")
}
