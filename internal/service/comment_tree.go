package service

import (
	"time"

	"agora/internal/models"
)

// AuthorRef identifies the author of a post or comment in detail views.
type AuthorRef struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// CommentNode is one comment of a post with its replies.
type CommentNode struct {
	ID        uint           `json:"id"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	ParentID  *uint          `json:"parentId"`
	Author    AuthorRef      `json:"author"`
	Children  []*CommentNode `json:"children"`
}

// BuildCommentTree nests comments under their parents in one pass. Input order is
// preserved among siblings. A comment whose parent is not in the input becomes a root.
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	nodes := make(map[uint]*CommentNode, len(comments))
	ordered := make([]*CommentNode, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		node := &CommentNode{
			ID:        c.ID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			ParentID:  c.ParentID,
			Author:    AuthorRef{ID: c.User.ID, Nickname: c.User.Nickname},
			Children:  []*CommentNode{},
		}
		nodes[c.ID] = node
		ordered = append(ordered, node)
	}

	roots := make([]*CommentNode, 0)
	for _, node := range ordered {
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
