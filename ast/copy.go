package ast

// Copy returns a deep copy of n, positions included.
func Copy(n Node) Node {
	switch node := n.(type) {
	case *NumberNode:
		c := *node
		return &c
	case *StringNode:
		c := *node
		return &c
	case *BoolNode:
		c := *node
		return &c
	case *ReferenceNode:
		c := *node
		return &c
	case *ErrorNode:
		c := *node
		return &c
	case *UnaryNode:
		c := *node
		c.Node = Copy(node.Node)
		return &c
	case *PostfixNode:
		c := *node
		c.Node = Copy(node.Node)
		return &c
	case *BinaryNode:
		c := *node
		c.Left = Copy(node.Left)
		c.Right = Copy(node.Right)
		return &c
	case *FunctionNode:
		c := *node
		if node.Args != nil {
			c.Args = make([]Node, len(node.Args))
			for i, a := range node.Args {
				c.Args[i] = Copy(a)
			}
		}
		return &c
	}
	return n
}
