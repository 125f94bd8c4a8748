package ast

// FindReferenceVariables walks all nodes and returns the names of referenced
// variables in order of first appearance.
func FindReferenceVariables(nodes ...Node) []string {
	variablesSet := make(map[string]bool)
	variables := make([]string, 0)

	for _, node := range nodes {
		Walk(node, func(n Node) (Node, error) {
			if ref, ok := n.(*ReferenceNode); ok && !variablesSet[ref.Reference] {
				variablesSet[ref.Reference] = true
				variables = append(variables, ref.Reference)
			}
			return n, nil
		})
	}

	return variables
}

// FindFunctionCalls walks all nodes and returns a list of name of function calls.
func FindFunctionCalls(nodes ...Node) []string {
	funcCallsSet := make(map[string]bool)
	funcCalls := make([]string, 0)

	for _, node := range nodes {
		Walk(node, func(n Node) (Node, error) {
			if fnc, ok := n.(*FunctionNode); ok && !funcCallsSet[fnc.Func] {
				funcCallsSet[fnc.Func] = true
				funcCalls = append(funcCalls, fnc.Func)
			}
			return n, nil
		})
	}

	return funcCalls
}
