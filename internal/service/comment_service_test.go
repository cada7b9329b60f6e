package service

import (
	"context"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.createUser(t, "ada")
	postID := f.createPost(t, ada, "hello")
	otherPost := f.createPost(t, ada, "other")

	root, err := f.commentSvc.CreateComment(ctx, ada, CreateCommentInput{PostID: postID, Content: "root"})
	require.NoError(t, err)
	assert.NotZero(t, root.ID)
	assert.Equal(t, int64(1), f.statsOf(t, postID).CommentCount)

	reply, err := f.commentSvc.CreateComment(ctx, ada, CreateCommentInput{PostID: postID, ParentID: &root.ID, Content: "reply"})
	require.NoError(t, err)
	stored, err := f.comments.GetByID(ctx, reply.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ParentID)
	assert.Equal(t, root.ID, *stored.ParentID)
	assert.Equal(t, int64(2), f.statsOf(t, postID).CommentCount)

	foreign, err := f.commentSvc.CreateComment(ctx, ada, CreateCommentInput{PostID: otherPost, Content: "elsewhere"})
	require.NoError(t, err)

	_, err = f.commentSvc.CreateComment(ctx, ada, CreateCommentInput{PostID: postID, ParentID: &foreign.ID, Content: "x"})
	assertCode(t, err, models.CodeValidation)

	missing := uint(9999)
	_, err = f.commentSvc.CreateComment(ctx, ada, CreateCommentInput{PostID: postID, ParentID: &missing, Content: "x"})
	assertCode(t, err, models.CodeNotFound)

	_, err = f.commentSvc.DeleteComment(ctx, ada, root.ID)
	require.NoError(t, err)
	_, err = f.commentSvc.CreateComment(ctx, ada, CreateCommentInput{PostID: postID, ParentID: &root.ID, Content: "x"})
	assertCode(t, err, models.CodeValidation)

	_, err = f.commentSvc.CreateComment(ctx, ada, CreateCommentInput{PostID: 9999, Content: "x"})
	assertCode(t, err, models.CodeNotFound)

	assert.Equal(t, int64(1), f.statsOf(t, postID).CommentCount)
}

func TestCommentService_CreateCommentRejectsDeletedActors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.createUser(t, "ada")
	bob := f.createUser(t, "bob")
	postID := f.createPost(t, ada, "hello")
	f.deactivate(t, bob)

	_, err := f.commentSvc.CreateComment(ctx, bob, CreateCommentInput{PostID: postID, Content: "x"})
	assertCode(t, err, models.CodeNotFound)

	_, err = f.postSvc.DeletePost(ctx, ada, postID)
	require.NoError(t, err)
	_, err = f.commentSvc.CreateComment(ctx, ada, CreateCommentInput{PostID: postID, Content: "x"})
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService_DeleteComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.createUser(t, "ada")
	bob := f.createUser(t, "bob")
	postID := f.createPost(t, ada, "hello")
	c, err := f.commentSvc.CreateComment(ctx, ada, CreateCommentInput{PostID: postID, Content: "mine"})
	require.NoError(t, err)

	_, err = f.commentSvc.DeleteComment(ctx, bob, c.ID)
	assertCode(t, err, models.CodeForbidden)

	_, err = f.commentSvc.DeleteComment(ctx, ada, 9999)
	assertCode(t, err, models.CodeNotFound)

	_, err = f.commentSvc.DeleteComment(ctx, ada, c.ID)
	require.NoError(t, err)
	assert.Zero(t, f.statsOf(t, postID).CommentCount)

	_, err = f.commentSvc.DeleteComment(ctx, ada, c.ID)
	assertCode(t, err, models.CodeNotFound)

	f.deactivate(t, bob)
	_, err = f.commentSvc.DeleteComment(ctx, bob, c.ID)
	assertCode(t, err, models.CodeUnauthorized)
}

func TestCommentService_DeletedParentPromotesReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.createUser(t, "ada")
	postID := f.createPost(t, ada, "hello")

	root, err := f.commentSvc.CreateComment(ctx, ada, CreateCommentInput{PostID: postID, Content: "root"})
	require.NoError(t, err)
	_, err = f.commentSvc.CreateComment(ctx, ada, CreateCommentInput{PostID: postID, ParentID: &root.ID, Content: "reply"})
	require.NoError(t, err)
	_, err = f.commentSvc.DeleteComment(ctx, ada, root.ID)
	require.NoError(t, err)

	detail, err := f.postSvc.GetPostByID(ctx, postID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "reply", detail.Comments[0].Content)
	assert.Equal(t, int64(1), detail.Stats.CommentCount)
}
