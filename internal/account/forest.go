package account

import (
	"fmt"
	"sort"

	"github.com/stewardbooks/church-finance/internal"
)

// Node is one account in the chart-of-accounts display tree.
type Node struct {
	Account  *Account `json:"account"`
	Children []*Node  `json:"children"`
}

// Forest groups the chart of accounts by type, with parent/child trees inside
// each group.
type Forest struct {
	Groups map[Type][]*Node `json:"groups"`
}

// BuildForest assembles display trees from a flat account list. First pass
// indexes every account by id, second pass attaches each node to its parent
// when the parent resolves within the same set, otherwise the node is a root
// of its type group. Children are sorted by code within each level.
func BuildForest(accounts []*Account) *Forest {
	nodes := make(map[int64]*Node, len(accounts))
	for _, a := range accounts {
		nodes[a.ID] = &Node{Account: a}
	}

	forest := &Forest{Groups: make(map[Type][]*Node)}
	for _, a := range accounts {
		node := nodes[a.ID]
		if a.ParentID != nil {
			if parent, ok := nodes[*a.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		forest.Groups[a.AccountType] = append(forest.Groups[a.AccountType], node)
	}

	for _, roots := range forest.Groups {
		sortNodes(roots)
	}
	return forest
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Account.Code < nodes[j].Account.Code
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// WalkFunc is invoked once per account during traversal, with its depth below
// the type-group root.
type WalkFunc func(depth int, a *Account) error

// Walk traverses every group depth-first. A back-edge in the node graph, which
// only a malformed parent chain can produce, stops the walk with a structural
// error instead of recursing forever.
func (f *Forest) Walk(fn WalkFunc) error {
	visiting := make(map[int64]bool)
	for _, t := range Types {
		for _, root := range f.Groups[t] {
			if err := walkNode(root, 0, visiting, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkNode(n *Node, depth int, visiting map[int64]bool, fn WalkFunc) error {
	id := n.Account.ID
	if visiting[id] {
		return internal.NewStructuralError(
			fmt.Sprintf("account hierarchy cycle detected at account %s (id %d)", n.Account.Code, id))
	}
	visiting[id] = true
	defer delete(visiting, id)

	if err := fn(depth, n.Account); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := walkNode(child, depth+1, visiting, fn); err != nil {
			return err
		}
	}
	return nil
}

// ValidateParentChain rejects a parent assignment that would make the
// account its own ancestor. The chain is followed through the supplied
// account set with a visiting guard, so a pre-existing cycle in stored data
// surfaces as an error rather than an infinite loop.
func ValidateParentChain(accountID int64, parentID *int64, accounts []*Account) error {
	if parentID == nil {
		return nil
	}
	if *parentID == accountID {
		return internal.NewValidationError("account cannot be its own parent", internal.ErrCodeInvalidAccountRef)
	}

	byID := make(map[int64]*Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	visiting := map[int64]bool{accountID: true}
	next := parentID
	for next != nil {
		if visiting[*next] {
			return internal.NewValidationError(
				fmt.Sprintf("parent assignment creates a cycle through account id %d", *next),
				internal.ErrCodeInvalidAccountRef)
		}
		visiting[*next] = true

		parent, ok := byID[*next]
		if !ok {
			return internal.NewValidationError(
				fmt.Sprintf("parent account id %d does not exist", *next),
				internal.ErrCodeInvalidAccountRef)
		}
		next = parent.ParentID
	}
	return nil
}
