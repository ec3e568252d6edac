// Package xmlrpc implements the subset of XML-RPC spoken by DokuWiki's
// lib/exe/xmlrpc.php endpoint: encoding method calls with scalar, array and
// struct parameters, and decoding the single value of a method response.
//
// The subset is deliberately narrow. Array items and struct members are
// always encoded as strings, and the decoder resolves a response to one of
// string, integer, boolean or the raw text of the value element.
package xmlrpc

import "fmt"

// Kind identifies which variant of a Value is active.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindArray
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single call parameter. Build one with String, Int, Bool,
// Array or Struct; the zero Value is an empty string.
type Value struct {
	kind    Kind
	str     string
	num     int
	flag    bool
	items   []string
	members map[string]string
}

// String returns a string parameter.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Int returns an integer parameter, encoded as <i4>.
func Int(n int) Value {
	return Value{kind: KindInt, num: n}
}

// Bool returns a boolean parameter, encoded as 1 or 0.
func Bool(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

// Array returns an array parameter. Every item is sent as a <string>.
func Array(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindArray, items: cp}
}

// Struct returns a struct parameter. Every member value is sent as a <string>.
func Struct(members map[string]string) Value {
	cp := make(map[string]string, len(members))
	for k, v := range members {
		cp[k] = v
	}
	return Value{kind: KindStruct, members: cp}
}

// Kind reports the active variant.
func (v Value) Kind() Kind {
	return v.kind
}

// Call is a method invocation ready to be encoded.
type Call struct {
	Method string
	Params []Value
}

// NewCall builds a Call.
func NewCall(method string, params ...Value) Call {
	return Call{Method: method, Params: params}
}

// Encode serializes the call with EncodeCall.
func (c Call) Encode() ([]byte, error) {
	return EncodeCall(c.Method, c.Params...)
}
