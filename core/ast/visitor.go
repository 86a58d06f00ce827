package ast

// Action tells the preorder driver whether to descend into a node
type Action int

const (
	Continue Action = iota
	SkipChildren
)

// Handler processes one node
type Handler func(n *Node) Action

// Walker dispatches nodes to handlers keyed by node type.
//
// Preorder calls Enter[n.Type] (or Default) before the children; unless the
// handler returns SkipChildren, the children are walked and Exit[n.Type]
// runs afterwards. Postorder walks every child first and then calls the
// node's Enter handler, ignoring its Action.
type Walker struct {
	Enter   map[string]Handler
	Exit    map[string]func(n *Node)
	Default Handler
}

// Preorder walks n top-down
func (w *Walker) Preorder(n *Node) {
	if n == nil {
		return
	}
	if w.dispatch(n) == SkipChildren {
		return
	}
	for _, c := range n.Children {
		w.Preorder(c)
	}
	if exit := w.Exit[n.Type]; exit != nil {
		exit(n)
	}
}

// Postorder walks n bottom-up
func (w *Walker) Postorder(n *Node) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		w.Postorder(c)
	}
	w.dispatch(n)
}

// Children walks the children of n in preorder without dispatching n
// itself. Handlers that return SkipChildren use it to resume the walk.
func (w *Walker) Children(n *Node) {
	for _, c := range n.Children {
		w.Preorder(c)
	}
}

func (w *Walker) dispatch(n *Node) Action {
	if h := w.Enter[n.Type]; h != nil {
		return h(n)
	}
	if w.Default != nil {
		return w.Default(n)
	}
	return Continue
}
