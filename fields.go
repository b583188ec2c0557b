package ecs

import "reflect"

// supportedFieldKinds enumerates the primitive field kinds a component type
// may decompose into, per spec §3: i8, i16, i32, i64, bool, f32, f64,
// u16-char (represented as Go's uint16), string.
var supportedFieldKinds = map[reflect.Kind]bool{
	reflect.Int8:    true,
	reflect.Int16:   true,
	reflect.Int32:   true,
	reflect.Int64:   true,
	reflect.Bool:    true,
	reflect.Float32: true,
	reflect.Float64: true,
	reflect.Uint16:  true,
	reflect.String:  true,
}

// fieldSpec describes one decomposed field of a component type.
type fieldSpec struct {
	name  string
	index int
	typ   reflect.Type
}

// componentInfo is the one-time-computed decomposition layout for a
// component type, built at first registration (spec §9: "decomposition is
// ... registered manually once per type"; here it is derived automatically
// via reflection rather than hand-written, since Go has no derive macros,
// but it is computed once and cached exactly as the design note prescribes
// rather than re-reflected per row).
type componentInfo struct {
	typ    reflect.Type
	fields []fieldSpec
}

// buildComponentInfo reflects over t's fields once, failing if t is not a
// struct or has a field whose kind cannot be decomposed into a primitive
// column.
func buildComponentInfo(t reflect.Type) (*componentInfo, error) {
	if t.Kind() != reflect.Struct {
		return nil, UnsupportedFieldTypeError{
			ComponentType: t.String(),
			FieldName:     "<component>",
			Kind:          t.Kind().String(),
		}
	}
	info := &componentInfo{typ: t}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !supportedFieldKinds[f.Type.Kind()] {
			return nil, UnsupportedFieldTypeError{
				ComponentType: t.String(),
				FieldName:     f.Name,
				Kind:          f.Type.Kind().String(),
			}
		}
		info.fields = append(info.fields, fieldSpec{
			name:  f.Name,
			index: i,
			typ:   f.Type,
		})
	}
	return info, nil
}

// decompose writes each field of v into the corresponding element i of out.
func (ci *componentInfo) decompose(v reflect.Value, out []reflect.Value) {
	for i, fs := range ci.fields {
		out[i].Set(v.Field(fs.index))
	}
}

// reconstruct builds a reflect.Value of ci.typ from per-field values.
func (ci *componentInfo) reconstruct(in []reflect.Value) reflect.Value {
	out := reflect.New(ci.typ).Elem()
	for i, fs := range ci.fields {
		out.Field(fs.index).Set(in[i])
	}
	return out
}

// decomposeTyped is the generic entry point used by ComponentWriter.Write:
// it decomposes a concrete T into a pre-allocated scratch slice of field
// values without requiring the caller to deal in reflect.Value.
func decomposeTyped[T any](ci *componentInfo, v T, out []reflect.Value) {
	ci.decompose(reflect.ValueOf(v), out)
}

// reconstructTyped is the generic entry point used by ComponentReader.Read.
func reconstructTyped[T any](ci *componentInfo, in []reflect.Value) T {
	return ci.reconstruct(in).Interface().(T)
}

// componentTypeName returns the Go type name for T, used in error messages.
func componentTypeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
