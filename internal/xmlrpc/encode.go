package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
)

// EncodeCall serializes a methodCall document. The <params> element is
// written only when at least one parameter is given.
func EncodeCall(method string, params ...Value) ([]byte, error) {
	var buf bytes.Buffer
	w := &tokenWriter{enc: xml.NewEncoder(&buf)}

	w.token(xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0"`)})
	w.start("methodCall")
	w.element("methodName", method)

	if len(params) > 0 {
		w.start("params")
		for i, p := range params {
			w.start("param")
			w.start("value")
			if err := w.value(p); err != nil {
				return nil, fmt.Errorf("param %d: %w", i, err)
			}
			w.end("value")
			w.end("param")
		}
		w.end("params")
	}

	w.end("methodCall")
	if err := w.flush(); err != nil {
		return nil, fmt.Errorf("failed to encode %s call: %w", method, err)
	}
	return buf.Bytes(), nil
}

// tokenWriter keeps the first encoder error so call sites stay linear.
type tokenWriter struct {
	enc *xml.Encoder
	err error
}

func (w *tokenWriter) token(t xml.Token) {
	if w.err == nil {
		w.err = w.enc.EncodeToken(t)
	}
}

func (w *tokenWriter) start(name string) {
	w.token(xml.StartElement{Name: xml.Name{Local: name}})
}

func (w *tokenWriter) end(name string) {
	w.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (w *tokenWriter) text(s string) {
	if s != "" {
		w.token(xml.CharData(s))
	}
}

func (w *tokenWriter) element(name, text string) {
	w.start(name)
	w.text(text)
	w.end(name)
}

// stringValue writes <value><string>s</string></value>.
func (w *tokenWriter) stringValue(s string) {
	w.start("value")
	w.element("string", s)
	w.end("value")
}

func (w *tokenWriter) value(v Value) error {
	switch v.kind {
	case KindString:
		w.element("string", v.str)
	case KindInt:
		w.element("i4", strconv.Itoa(v.num))
	case KindBool:
		text := "0"
		if v.flag {
			text = "1"
		}
		w.element("boolean", text)
	case KindArray:
		// The array tag itself carries no text; items live under <data>.
		w.start("array")
		w.start("data")
		for _, item := range v.items {
			w.stringValue(item)
		}
		w.end("data")
		w.end("array")
	case KindStruct:
		keys := make([]string, 0, len(v.members))
		for k := range v.members {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		w.start("struct")
		for _, k := range keys {
			w.start("member")
			w.element("name", k)
			w.stringValue(v.members[k])
			w.end("member")
		}
		w.end("struct")
	default:
		return fmt.Errorf("unsupported value kind %s", v.kind)
	}
	return w.err
}

func (w *tokenWriter) flush() error {
	if w.err != nil {
		return w.err
	}
	return w.enc.Flush()
}
