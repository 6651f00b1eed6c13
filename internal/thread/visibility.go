package thread

import "thesisrepo/internal/models"

// Anonymous is the viewer id used when nobody is signed in.
const Anonymous uint = 0

// IsVisible reports whether viewerID may read the comment. Approved (or
// unset) comments are public; authors always see their own comments,
// including pending and rejected ones.
func IsVisible(c *models.Comment, viewerID uint) bool {
	return visible(c.EffectiveStatus(), c.UserID, viewerID)
}

func visible(status models.CommentStatus, ownerID *uint, viewerID uint) bool {
	if status == "" || status == models.CommentStatusApproved {
		return true
	}
	return viewerID != Anonymous && ownerID != nil && *ownerID == viewerID
}

// Render returns a copy of the forest as seen by viewerID. Visibility is
// decided per node: a hidden comment that still has visible replies is kept
// as a placeholder with its text, author and rejection reason blanked, and a
// hidden comment without visible replies is dropped. The input is not
// modified.
func Render(roots []*Node, viewerID uint) []*Node {
	out := make([]*Node, 0, len(roots))
	for _, n := range roots {
		if r := render(n, viewerID); r != nil {
			out = append(out, r)
		}
	}
	return out
}

func render(n *Node, viewerID uint) *Node {
	children := Render(n.Children, viewerID)

	cp := *n
	cp.Children = children
	if visible(n.Status, n.UserID, viewerID) {
		return &cp
	}
	if len(children) == 0 {
		return nil
	}

	cp.Hidden = true
	cp.Text = ""
	cp.RejectedReason = nil
	cp.UserID = nil
	cp.UserFullName = nil
	cp.UserRoleID = nil
	return &cp
}
