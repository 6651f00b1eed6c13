// Package thread turns the flat comment list of a thesis into a reply forest
// and applies the moderation visibility rules for a given viewer.
//
// Everything here is a pure function of its inputs: callers fetch comments
// ordered by (created_at ASC, id ASC) and must not re-sort them, since child
// order mirrors input order.
package thread

import (
	"time"

	"thesisrepo/internal/models"
)

// Node is one comment in the rendered reply tree.
type Node struct {
	ID              uint                 `json:"id"`
	ThesisID        uint                 `json:"thesis_id"`
	UserID          *uint                `json:"user_id"`
	ParentCommentID *uint                `json:"parent_comment_id"`
	UserFullName    *string              `json:"user_full_name"`
	UserRoleID      *int                 `json:"user_role_id"`
	Text            string               `json:"text"`
	Status          models.CommentStatus `json:"status"`
	RejectedReason  *string              `json:"rejected_reason"`
	CreatedAt       time.Time            `json:"created_at"`
	Hidden          bool                 `json:"hidden,omitempty"`
	Children        []*Node              `json:"children"`
}

// Forest is the result of Build.
type Forest struct {
	Roots []*Node
	// CutCycles lists comment ids that were promoted to roots because their
	// parent chain looped back onto itself.
	CutCycles []uint
}

// BuildTree returns the root nodes of the reply forest.
func BuildTree(comments []models.Comment) []*Node {
	return Build(comments).Roots
}

// Build assembles the reply forest. A comment whose parent is missing from
// the input becomes a root. Parent chains that form a cycle are cut at the
// member appearing first in the input, which then becomes a root, so every
// input comment appears exactly once in the result.
func Build(comments []models.Comment) Forest {
	index := make(map[uint]int, len(comments))
	for i := range comments {
		if _, dup := index[comments[i].ID]; !dup {
			index[comments[i].ID] = i
		}
	}

	parent := make([]int, len(comments))
	for i := range comments {
		parent[i] = -1
		if pid := comments[i].ParentCommentID; pid != nil {
			if j, ok := index[*pid]; ok && index[comments[i].ID] == i {
				parent[i] = j
			}
		}
	}

	cut := breakCycles(parent)

	nodes := make([]*Node, len(comments))
	for i := range comments {
		nodes[i] = newNode(&comments[i])
	}

	forest := Forest{Roots: make([]*Node, 0)}
	for i, n := range nodes {
		if parent[i] < 0 {
			forest.Roots = append(forest.Roots, n)
			continue
		}
		p := nodes[parent[i]]
		p.Children = append(p.Children, n)
	}
	for _, i := range cut {
		forest.CutCycles = append(forest.CutCycles, comments[i].ID)
	}
	return forest
}

// breakCycles walks each parent chain once. States: 0 unvisited, 1 on the
// current walk, 2 finished. Reaching a state-1 node closes a cycle.
func breakCycles(parent []int) []int {
	state := make([]uint8, len(parent))
	var cut []int
	path := make([]int, 0, 8)

	for start := range parent {
		if state[start] != 0 {
			continue
		}
		path = path[:0]
		j := start
		for j >= 0 && state[j] == 0 {
			state[j] = 1
			path = append(path, j)
			j = parent[j]
		}
		if j >= 0 && state[j] == 1 {
			first := j
			for k := len(path) - 1; k >= 0 && path[k] != j; k-- {
				if path[k] < first {
					first = path[k]
				}
			}
			parent[first] = -1
			cut = append(cut, first)
		}
		for _, k := range path {
			state[k] = 2
		}
	}
	return cut
}

func newNode(c *models.Comment) *Node {
	n := &Node{
		ID:              c.ID,
		ThesisID:        c.ThesisID,
		UserID:          c.UserID,
		ParentCommentID: c.ParentCommentID,
		Text:            c.Content,
		Status:          c.EffectiveStatus(),
		RejectedReason:  c.RejectedReason,
		CreatedAt:       c.CreatedAt,
		Children:        make([]*Node, 0),
	}
	if c.User != nil {
		name := c.User.FullName
		role := c.User.RoleID
		n.UserFullName = &name
		n.UserRoleID = &role
	}
	return n
}

// Count returns the number of nodes in the forest.
func Count(roots []*Node) int {
	total := 0
	for _, n := range roots {
		total += 1 + Count(n.Children)
	}
	return total
}
