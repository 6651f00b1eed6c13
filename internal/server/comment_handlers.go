package server

import (
	"strings"

	"thesisrepo/internal/models"
	"thesisrepo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/theses/:id/comments
// @Summary Comment thread of a thesis
// @Description Returns the reply forest as seen by the caller. The token is optional;
// @Description anonymous callers only see approved comments.
// @Tags comments
// @Produce json
// @Success 200 {array} thread.Node
// @Failure 404 {object} models.ErrorResponse
// @Router /theses/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	thesisID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	nodes, err := s.commentService.List(c.UserContext(), thesisID, s.optionalUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(nodes)
}

// CreateComment handles POST /api/theses/:id/comments
// @Summary Submit a comment or reply
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Param request body object{text=string,parent_comment_id=int} true "Comment"
// @Success 201 {object} models.Comment
// @Router /theses/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	thesisID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text            string `json:"text"`
		ParentCommentID *uint  `json:"parent_comment_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	created, err := s.commentService.Submit(c.UserContext(), service.SubmitCommentInput{
		ThesisID:        thesisID,
		UserID:          currentUserID(c),
		Text:            req.Text,
		ParentCommentID: req.ParentCommentID,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	deleted, err := s.commentService.Delete(c.UserContext(), service.DeleteCommentInput{
		UserID:    currentUserID(c),
		CommentID: commentID,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// GetPendingComments handles GET /api/admin/comments/pending
func (s *Server) GetPendingComments(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPaginationLimit)

	comments, err := s.commentService.Pending(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(comments)
}

// ModerateComment handles PUT /api/admin/comments/:id/moderation
// @Summary Approve or reject a comment
// @Tags comments
// @Security BearerAuth
// @Param request body object{status=string,rejected_reason=string} true "Decision"
// @Success 200 {object} models.Comment
// @Router /admin/comments/{id}/moderation [put]
func (s *Server) ModerateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status         string `json:"status"`
		RejectedReason string `json:"rejected_reason"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.Moderate(c.UserContext(), service.ModerateCommentInput{
		ModeratorID: currentUserID(c),
		CommentID:   commentID,
		Status:      models.CommentStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		Reason:      req.RejectedReason,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(comment)
}
