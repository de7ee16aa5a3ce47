// Package evolution resolves an entity's neighbours in an evolution tree.
package evolution

// Node is one species in an evolution tree. A Node owns its children.
type Node struct {
	Name     string
	Children []*Node
}

// Result is the position of a target within a tree
type Result struct {
	// From is the parent's name, nil at the root or when not found
	From *string
	// To lists the children's names in source order, never nil
	To    []string
	Found bool
}

// Resolve walks the tree depth-first and reports the predecessor and
// successors of the node named target. A nil tree or an absent target yields
// an empty Result. When several nodes share the target name the last one
// visited wins. Nodes reachable twice are visited once.
func Resolve(root *Node, target string) Result {
	res := Result{To: []string{}}
	visited := make(map[*Node]bool)

	var walk func(n *Node, prev *string)
	walk = func(n *Node, prev *string) {
		if n == nil || visited[n] {
			return
		}
		visited[n] = true

		if n.Name == target {
			res = Result{From: prev, To: childNames(n), Found: true}
		}

		name := n.Name
		for _, child := range n.Children {
			walk(child, &name)
		}
	}
	walk(root, nil)

	return res
}

// Line returns every name in the tree in depth-first pre-order
func Line(root *Node) []string {
	line := []string{}
	visited := make(map[*Node]bool)

	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil || visited[n] {
			return
		}
		visited[n] = true
		line = append(line, n.Name)
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)

	return line
}

func childNames(n *Node) []string {
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		if c != nil {
			names = append(names, c.Name)
		}
	}
	return names
}
