package ecs

import (
	"reflect"
	"testing"
)

type testPosition struct {
	X, Y float64
}

type testFlags struct {
	Name   string
	Health int32
	Alive  bool
}

type testUnsupported struct {
	Data []byte
}

func TestBuildComponentInfoRejectsUnsupportedField(t *testing.T) {
	_, err := buildComponentInfo(reflect.TypeOf(testUnsupported{}))
	if err == nil {
		t.Fatal("expected an error for a []byte field")
	}
	if _, ok := err.(UnsupportedFieldTypeError); !ok {
		t.Fatalf("expected UnsupportedFieldTypeError, got %T", err)
	}
}

func TestBuildComponentInfoRejectsNonStruct(t *testing.T) {
	_, err := buildComponentInfo(reflect.TypeOf(42))
	if err == nil {
		t.Fatal("expected an error for a non-struct type")
	}
}

func TestDecompositionRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"position", testPosition{X: 1.5, Y: -2.25}},
		{"flags", testFlags{Name: "goblin", Health: 12, Alive: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := reflect.TypeOf(tt.in)
			info, err := buildComponentInfo(typ)
			if err != nil {
				t.Fatalf("buildComponentInfo: %v", err)
			}
			scratch := make([]reflect.Value, len(info.fields))
			for i, fs := range info.fields {
				scratch[i] = reflect.New(fs.typ).Elem()
			}
			info.decompose(reflect.ValueOf(tt.in), scratch)
			out := info.reconstruct(scratch).Interface()
			if !reflect.DeepEqual(out, tt.in) {
				t.Fatalf("reconstruct(decompose(v)) = %#v, want %#v", out, tt.in)
			}
		})
	}
}
