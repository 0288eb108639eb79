package doctree

// Forest is the top level of the navigation tree.
type Forest []*Node

// Category returns the top-level directory with the given name.
func (f Forest) Category(name string) *Node {
	for _, n := range f {
		if n.IsDir() && n.Name == name {
			return n
		}
	}
	return nil
}

// Find returns the node at path, searching depth-first.
func (f Forest) Find(path string) *Node {
	var found *Node
	walk(f, func(n *Node) bool {
		if n.Path == path {
			found = n
			return false
		}
		return true
	})
	return found
}

// Files returns every document in depth-first order.
func (f Forest) Files() []*Node {
	var files []*Node
	walk(f, func(n *Node) bool {
		if !n.IsDir() {
			files = append(files, n)
		}
		return true
	})
	return files
}

// FirstFile returns the first document under n in depth-first order, or nil.
func FirstFile(n *Node) *Node {
	if n == nil {
		return nil
	}
	if !n.IsDir() {
		return n
	}
	files := Forest(n.Children).Files()
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// Neighbors returns the documents immediately before and after path among
// the direct file children of its top-level category.
func (f Forest) Neighbors(path string) (prev, next *Node) {
	cat := f.Category(CategoryOf(path))
	if cat == nil {
		return nil, nil
	}
	var siblings []*Node
	for _, c := range cat.Children {
		if !c.IsDir() {
			siblings = append(siblings, c)
		}
	}
	for i, s := range siblings {
		if s.Path != path {
			continue
		}
		if i > 0 {
			prev = siblings[i-1]
		}
		if i < len(siblings)-1 {
			next = siblings[i+1]
		}
		return prev, next
	}
	return nil, nil
}

// walk visits nodes depth-first until fn returns false.
func walk(nodes []*Node, fn func(*Node) bool) bool {
	for _, n := range nodes {
		if !fn(n) {
			return false
		}
		if n.IsDir() && !walk(n.Children, fn) {
			return false
		}
	}
	return true
}
