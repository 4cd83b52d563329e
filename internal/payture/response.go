package payture

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Element is one node of the gateway's XML payload: attributes plus nested
// elements of the same shape. Unknown attributes and children are kept as-is so
// new gateway fields survive a round trip.
type Element struct {
	Name       string
	Attributes map[string]string
	Children   []Element
}

// Response is the decoded result of a single apim command. RawBody keeps the
// exact response text for order notes and diagnostics.
type Response struct {
	Name       string
	Success    bool
	ErrCode    string
	Attributes map[string]string
	Elements   []Element
	RawBody    string
}

type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []xmlNode  `xml:",any"`
}

// ParseResponse decodes a gateway response body.
//
//	<Init Success="True" OrderId="..." Amount="12613" SessionId="..."/>
//	<GetState Success="False" OrderId="..." State="" ErrCode="ORDER_NOT_FOUND"/>
//
// The Success attribute is mandatory: without it the outcome of the command is
// unknown and the caller must not guess.
func ParseResponse(body string) (*Response, error) {
	var root xmlNode
	if err := xml.Unmarshal([]byte(body), &root); err != nil {
		return nil, fmt.Errorf("failed to parse response body: %w", err)
	}

	attributes := make(map[string]string, len(root.Attrs))
	for _, a := range root.Attrs {
		attributes[a.Name.Local] = a.Value
	}

	successString, ok := attributes["Success"]
	if !ok {
		return nil, fmt.Errorf("response %q has no Success attribute", root.XMLName.Local)
	}
	success, err := strconv.ParseBool(strings.ToLower(successString))
	if err != nil {
		return nil, fmt.Errorf("response %q has malformed Success attribute %q: %w", root.XMLName.Local, successString, err)
	}

	response := &Response{
		Name:       root.XMLName.Local,
		Success:    success,
		ErrCode:    attributes["ErrCode"],
		Attributes: attributes,
		Elements:   convertNodes(root.Nodes),
		RawBody:    body,
	}

	return response, nil
}

func convertNodes(nodes []xmlNode) []Element {
	if len(nodes) == 0 {
		return nil
	}
	elements := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		attributes := make(map[string]string, len(n.Attrs))
		for _, a := range n.Attrs {
			attributes[a.Name.Local] = a.Value
		}
		elements = append(elements, Element{
			Name:       n.XMLName.Local,
			Attributes: attributes,
			Children:   convertNodes(n.Nodes),
		})
	}
	return elements
}
