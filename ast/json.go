package ast

import (
	"encoding/json"
	"fmt"
)

// NodeTypeOf is used by all Node to identify the node during Marshal and Unmarshal
const NodeTypeOf = "typeOf"

// JSONNode is the intermediate type between Node and JSON serialization
type JSONNode map[string]interface{}

// Type adds the Node type information
func (j JSONNode) Type(typ string) JSONNode {
	j[NodeTypeOf] = typ
	return j
}

// Set adds the key/value to the JSONNode
func (j JSONNode) Set(key string, value interface{}) JSONNode {
	j[key] = value
	return j
}

// SetOperator adds key to JSONNode but formats the operator as a string
func (j JSONNode) SetOperator(key string, op TokenType) JSONNode {
	return j.Set(key, op.String())
}

// TypeOf returns the type of the node
func (j JSONNode) TypeOf() (string, error) {
	return j.String(NodeTypeOf)
}

// CheckTypeOf tests that the typeOf field is correctly set to typ.
func (j JSONNode) CheckTypeOf(typ string) error {
	t, ok := j[NodeTypeOf]
	if !ok {
		return fmt.Errorf("missing typeOf field")
	}
	if t != typ {
		return fmt.Errorf("error unmarshaling node type %s; received %s", typ, t)
	}
	return nil
}

// Has returns true if field exists
func (j JSONNode) Has(field string) bool {
	_, ok := j[field]
	return ok
}

// Field returns expected field or error if field doesn't exist
func (j JSONNode) Field(field string) (interface{}, error) {
	fld, ok := j[field]
	if !ok {
		return nil, fmt.Errorf("missing expected field %s", field)
	}
	return fld, nil
}

// String reads the field for a string value
func (j JSONNode) String(field string) (string, error) {
	s, err := j.Field(field)
	if err != nil {
		return "", err
	}
	str, ok := s.(string)
	if !ok {
		return "", fmt.Errorf("field %s is not a string value but is %T", field, s)
	}
	return str, nil
}

// Float64 reads the field for a float64 value
func (j JSONNode) Float64(field string) (float64, error) {
	n, err := j.Field(field)
	if err != nil {
		return 0, err
	}
	num, ok := n.(float64)
	if !ok {
		integer, ok := n.(int64)
		if !ok {
			return 0, fmt.Errorf("field %s is not a floating point value but is %T", field, n)
		}
		num = float64(integer)
	}
	return num, nil
}

// Bool reads the field for a boolean value
func (j JSONNode) Bool(field string) (bool, error) {
	b, err := j.Field(field)
	if err != nil {
		return false, err
	}
	boolean, ok := b.(bool)
	if !ok {
		return false, fmt.Errorf("field %s is not a bool value but is %T", field, b)
	}
	return boolean, nil
}

// Operator reads the field for an TokenType operator value
func (j JSONNode) Operator(field string) (TokenType, error) {
	o, err := j.Field(field)
	if err != nil {
		return TokenError, err
	}
	op, ok := o.(string)
	if !ok {
		return TokenError, fmt.Errorf("field %s is not an operator value but is %T", field, o)
	}
	return NewTokenType(op)
}

// NodeList reads the field for a list of nodes
func (j JSONNode) NodeList(field string) ([]Node, error) {
	l, err := j.Field(field)
	if err != nil {
		return nil, err
	}
	list, ok := l.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field %s is not a list of values but is %T", field, l)
	}
	nodes := make([]Node, len(list))
	for i, lst := range list {
		nodes[i], err = j.getNode(lst)
		if err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// Node reads the field for a node
func (j JSONNode) Node(field string) (Node, error) {
	nn, err := j.Field(field)
	if err != nil {
		return nil, err
	}
	return j.getNode(nn)
}

func (j JSONNode) getNode(nn interface{}) (Node, error) {
	nd, ok := nn.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected node type but is %T", nn)
	}
	node := JSONNode(nd)
	typ, err := node.TypeOf()
	if err != nil {
		return nil, err
	}

	var n Node
	switch typ {
	case "number":
		n = &NumberNode{}
	case "string":
		n = &StringNode{}
	case "bool":
		n = &BoolNode{}
	case "reference":
		n = &ReferenceNode{}
	case "unary":
		n = &UnaryNode{}
	case "postfix":
		n = &PostfixNode{}
	case "binary":
		n = &BinaryNode{}
	case "func":
		n = &FunctionNode{}
	case "error":
		n = &ErrorNode{}
	default:
		return nil, fmt.Errorf("unknown node type %q", typ)
	}
	err = n.unmarshal(node)
	return n, err
}

// UnmarshalNode decodes any node from its JSON form.
func UnmarshalNode(data []byte) (Node, error) {
	var props map[string]interface{}
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, err
	}
	return JSONNode{}.getNode(props)
}
