package output

import (
	"github.com/hupe1980/graphyaml/internal/archive"
	"github.com/hupe1980/graphyaml/internal/emit"
	"github.com/hupe1980/graphyaml/internal/identity"
)

// node is a minimal archive object carrying its identity as IdentityField.
type node struct {
	id   identity.ID
	name string
	next *node
}

func newNode(name string) *node {
	return &node{id: identity.FromName(identity.Nil, name), name: name}
}

func (n *node) ID() identity.ID { return n.id }

func (n *node) TypeTag() string { return "Node" }

func (n *node) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.NVP(IdentityField, archive.String(n.id.String())),
		archive.NVP("m_Name", archive.String(n.name)),
		archive.NVP("m_Next", archive.Ref(n.next)),
	)
}

// passOf serializes root and everything reachable from it.
func passOf(root *node) Pass {
	return func(sink emit.Sink) error {
		return archive.New(sink).SerializeReference(root)
	}
}
