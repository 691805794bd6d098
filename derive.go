// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import (
	"reflect"
	"strings"
)

// FromStruct derives a []Field from T's exported fields, the Go
// stand-in for the macro/codegen layer spec.md places out of scope
// (SPEC_FULL.md §3): a struct field becomes a Field named after it
// (or its `side:"name"` tag), typed by its Go kind. It is sugar over
// DescribeEvent/DescribeVariadicEvent; a hand-built []Field is always
// an equally valid way to describe an event.
//
// Supported Go kinds: bool, (u)int8/16/32/64, (u)int (treated as 64
// bits), float32/64, string, nested structs, and slices ([]byte as a
// Vla of Byte, any other slice as a Vla of its element's type).
// Anything else panics at derivation time, which happens once at event
// declaration, not on the dispatch path.
func FromStruct[T any]() []Field {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		panic("side: FromStruct requires a struct type")
	}
	return fieldsOf(t)
}

func fieldsOf(t reflect.Type) []Field {
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		name, attrs := parseSideTag(sf)
		fields = append(fields, Field{Name: name, Type: typeOf(sf.Type, attrs)})
	}
	return fields
}

func parseSideTag(sf reflect.StructField) (name string, attrs []Attr) {
	name = sf.Name
	tag, ok := sf.Tag.Lookup("side")
	if !ok {
		return name, nil
	}
	parts := strings.Split(tag, ",")
	if len(parts) > 0 && parts[0] != "" && !strings.Contains(parts[0], "=") {
		name = parts[0]
		parts = parts[1:]
	}
	for _, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) == 2 {
			attrs = append(attrs, StringAttr(kv[0], kv[1]))
		}
	}
	return name, attrs
}

func typeOf(rt reflect.Type, attrs []Attr) Type {
	switch rt.Kind() {
	case reflect.Bool:
		return Bool(attrs...)
	case reflect.Int8:
		return Integer(Width8, true, OrderHost, attrs...)
	case reflect.Int16:
		return Integer(Width16, true, OrderHost, attrs...)
	case reflect.Int32:
		return Integer(Width32, true, OrderHost, attrs...)
	case reflect.Int, reflect.Int64:
		return Integer(Width64, true, OrderHost, attrs...)
	case reflect.Uint8:
		return Integer(Width8, false, OrderHost, attrs...)
	case reflect.Uint16:
		return Integer(Width16, false, OrderHost, attrs...)
	case reflect.Uint32:
		return Integer(Width32, false, OrderHost, attrs...)
	case reflect.Uint, reflect.Uint64:
		return Integer(Width64, false, OrderHost, attrs...)
	case reflect.Float32:
		return Float(Width32, OrderHost, attrs...)
	case reflect.Float64:
		return Float(Width64, OrderHost, attrs...)
	case reflect.String:
		return String(EncodingUTF8, OrderHost, attrs...)
	case reflect.Struct:
		return Struct(fieldsOf(rt), attrs...)
	case reflect.Slice:
		lenType := Integer(Width64, false, OrderHost)
		if rt.Elem().Kind() == reflect.Uint8 {
			return Vla(lenType, Byte(), attrs...)
		}
		return Vla(lenType, typeOf(rt.Elem(), nil), attrs...)
	default:
		panic("side: FromStruct: unsupported field kind " + rt.Kind().String())
	}
}
