package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMeAndProfile(t *testing.T) {
	s, app := newTestApp(t)
	ada, _ := signupAndLogin(t, app, "ada")
	signupAndLogin(t, app, "bob")

	status, body := doJSON(t, app, http.MethodPatch, "/user/me", map[string]string{"nickname": "bob"}, ada)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CONFLICT", body["code"])

	status, body = doJSON(t, app, http.MethodPatch, "/user/me", map[string]string{}, ada)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "no changes", body["message"])

	status, _ = doJSON(t, app, http.MethodPatch, "/user/me", map[string]string{"nickname": "countess"}, ada)
	require.Equal(t, http.StatusOK, status)

	claims, err := s.tokens.VerifyAccess(ada)
	require.NoError(t, err)
	status, body = doJSON(t, app, http.MethodGet, "/user/"+claims.Subject, nil, ada)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "countess", body["nickname"])
	assert.Equal(t, claims.Subject, body["id"])

	status, _ = doJSON(t, app, http.MethodGet, "/user/does-not-exist", nil, ada)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMyPostsAndComments(t *testing.T) {
	_, app := newTestApp(t)
	ada, _ := signupAndLogin(t, app, "ada")
	postID := createPostViaAPI(t, app, ada, "hello")
	status, _ := doJSON(t, app, http.MethodPost, "/comment", map[string]interface{}{"postId": postID, "content": "c"}, ada)
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodGet, "/user/me/posts", nil, ada)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["posts"].([]interface{}), 1)

	status, body = doJSON(t, app, http.MethodGet, "/user/me/comments", nil, ada)
	require.Equal(t, http.StatusOK, status)
	comments := body["comments"].([]interface{})
	require.Len(t, comments, 1)
	assert.Equal(t, float64(postID), comments[0].(map[string]interface{})["postId"])
}
