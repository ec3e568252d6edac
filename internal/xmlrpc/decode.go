package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/dokuwiki-mcp-server/internal/errors"
	"golang.org/x/net/html/charset"
)

// ResultKind identifies which variant of a Result is active.
type ResultKind int

const (
	// ResultNone means the response carried no <value> element.
	ResultNone ResultKind = iota
	ResultString
	ResultInt
	ResultBool
	// ResultRaw is the verbatim text of an untagged, array or struct value.
	ResultRaw
)

func (k ResultKind) String() string {
	switch k {
	case ResultNone:
		return "none"
	case ResultString:
		return "string"
	case ResultInt:
		return "int"
	case ResultBool:
		return "bool"
	case ResultRaw:
		return "raw"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the decoded response envelope.
type Result struct {
	Kind ResultKind
	Str  string // ResultString and ResultRaw
	Int  int    // ResultInt
	Bool bool   // ResultBool
}

// IsNone reports whether the response had no value.
func (r Result) IsNone() bool {
	return r.Kind == ResultNone
}

// Text returns the result in string form.
func (r Result) Text() string {
	switch r.Kind {
	case ResultString, ResultRaw:
		return r.Str
	case ResultInt:
		return strconv.Itoa(r.Int)
	case ResultBool:
		if r.Bool {
			return "1"
		}
		return "0"
	}
	return ""
}

// Truthy reports whether the result is present and non-zero: a non-empty
// string, a non-zero integer or true.
func (r Result) Truthy() bool {
	switch r.Kind {
	case ResultString, ResultRaw:
		return r.Str != ""
	case ResultInt:
		return r.Int != 0
	case ResultBool:
		return r.Bool
	}
	return false
}

// Integer returns the result as an integer. Strings are parsed after
// trimming surrounding space.
func (r Result) Integer() (int, bool) {
	switch r.Kind {
	case ResultInt:
		return r.Int, true
	case ResultString, ResultRaw:
		n, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// ErrNotList is returned by DecodeStructList when the response value is not an array.
var ErrNotList = errors.New("xmlrpc: response value is not an array")

// DecodeValue decodes the first <value> element of a response.
//
// Type resolution looks for descendant tags in a fixed order: <string>,
// then <i4> or <int>, then <boolean>. When none is present the value's
// text content is returned verbatim as ResultRaw.
func DecodeValue(body []byte) (Result, error) {
	doc, err := parseDocument(body)
	if err != nil {
		return Result{}, err
	}

	value := doc.find("value")
	if value == nil {
		return Result{Kind: ResultNone}, nil
	}

	if s := value.find("string"); s != nil {
		return Result{Kind: ResultString, Str: s.textContent()}, nil
	}

	intNode := value.find("i4")
	if intNode == nil {
		intNode = value.find("int")
	}
	if intNode != nil {
		text := intNode.textContent()
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return Result{}, apierrors.NewParseError(fmt.Sprintf("invalid integer %q", text), err)
		}
		return Result{Kind: ResultInt, Int: n}, nil
	}

	if b := value.find("boolean"); b != nil {
		return Result{Kind: ResultBool, Bool: b.textContent() == "1"}, nil
	}

	return Result{Kind: ResultRaw, Str: value.textContent()}, nil
}

// DecodeStructList decodes a response whose value is an array of structs,
// such as the result of dokuwiki.search. Each struct becomes a map from
// member name to the text content of its value. Array items that are not
// structs are skipped.
func DecodeStructList(body []byte) ([]map[string]string, error) {
	doc, err := parseDocument(body)
	if err != nil {
		return nil, err
	}

	value := doc.find("value")
	if value == nil {
		return nil, ErrNotList
	}
	array := value.child("array")
	if array == nil {
		return nil, ErrNotList
	}
	data := array.child("data")
	if data == nil {
		return []map[string]string{}, nil
	}

	entries := make([]map[string]string, 0, len(data.children))
	for _, item := range data.elements("value") {
		st := item.child("struct")
		if st == nil {
			continue
		}
		entry := make(map[string]string)
		for _, member := range st.elements("member") {
			name := member.child("name")
			if name == nil {
				continue
			}
			var text string
			if v := member.child("value"); v != nil {
				text = v.textContent()
			}
			entry[name.textContent()] = text
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// node is a minimal element tree. Text nodes have an empty name.
type node struct {
	name     string
	text     string
	children []*node
}

func parseDocument(body []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	root := &node{}
	stack := []*node{root}
	sawElement := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierrors.NewParseError(err.Error(), err)
		}

		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local}
			top.children = append(top.children, n)
			stack = append(stack, n)
			sawElement = true
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.children = append(top.children, &node{text: string(t)})
		}
	}

	if !sawElement {
		return nil, apierrors.NewParseError("no root element", nil)
	}
	return root, nil
}

// find returns the first descendant element with the given name in document order.
func (n *node) find(name string) *node {
	for _, c := range n.children {
		if c.name == "" {
			continue
		}
		if c.name == name {
			return c
		}
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}

// child returns the first direct child element with the given name.
func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// elements returns all direct child elements with the given name.
func (n *node) elements(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) textContent() string {
	if n.name == "" {
		return n.text
	}
	var sb strings.Builder
	for _, c := range n.children {
		sb.WriteString(c.textContent())
	}
	return sb.String()
}
