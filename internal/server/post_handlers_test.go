package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPostCountsViews(t *testing.T) {
	_, app := newTestApp(t)
	access, _ := signupAndLogin(t, app, "ada")
	postID := createPostViaAPI(t, app, access, "hello")

	for want := 1; want <= 2; want++ {
		status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/post/%d", postID), nil, access)
		require.Equal(t, http.StatusOK, status)
		stats := body["stats"].(map[string]interface{})
		assert.Equal(t, float64(want), stats["viewCount"])
		assert.Equal(t, float64(0), stats["likeCount"])
		assert.Equal(t, float64(0), stats["commentCount"])
	}
}

func TestGetPostNestedReply(t *testing.T) {
	_, app := newTestApp(t)
	access, _ := signupAndLogin(t, app, "ada")
	postID := createPostViaAPI(t, app, access, "hello")

	status, root := doJSON(t, app, http.MethodPost, "/comment", map[string]interface{}{
		"postId": postID, "content": "root",
	}, access)
	require.Equal(t, http.StatusCreated, status)
	rootID := root["id"].(float64)

	status, _ = doJSON(t, app, http.MethodPost, "/comment", map[string]interface{}{
		"postId": postID, "parentId": rootID, "content": "reply",
	}, access)
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/post/%d", postID), nil, access)
	require.Equal(t, http.StatusOK, status)
	comments := body["comments"].([]interface{})
	require.Len(t, comments, 1)
	first := comments[0].(map[string]interface{})
	assert.Equal(t, "root", first["content"])
	assert.Nil(t, first["parentId"])
	children := first["children"].([]interface{})
	require.Len(t, children, 1)
	child := children[0].(map[string]interface{})
	assert.Equal(t, "reply", child["content"])
	assert.Equal(t, rootID, child["parentId"])
	assert.Equal(t, "ada", child["author"].(map[string]interface{})["nickname"])
}

func TestCreatePostValidation(t *testing.T) {
	_, app := newTestApp(t)
	access, _ := signupAndLogin(t, app, "ada")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing title", map[string]interface{}{"content": "c"}},
		{"html title", map[string]interface{}{"title": "<b>hi</b>", "content": "c"}},
		{"bad mime", map[string]interface{}{"title": "t", "content": "c", "files": []map[string]interface{}{
			{"url": "https://cdn.example.com/x.exe", "originalName": "x.exe", "mimeType": "application/x-msdownload"},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodPost, "/post", tt.body, access)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_ERROR", body["code"])
		})
	}
}

func TestCreatePostWithFiles(t *testing.T) {
	_, app := newTestApp(t)
	access, _ := signupAndLogin(t, app, "ada")

	status, created := doJSON(t, app, http.MethodPost, "/post", map[string]interface{}{
		"title": "with files", "content": "c",
		"files": []map[string]interface{}{
			{"url": "https://cdn.example.com/a.png", "originalName": "a.png", "mimeType": "image/png", "size": 12},
			{"url": "https://cdn.example.com/b.pdf", "originalName": "b.pdf", "mimeType": "application/pdf", "size": -3},
		},
	}, access)
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/post/%v", created["id"]), nil, access)
	require.Equal(t, http.StatusOK, status)
	files := body["files"].([]interface{})
	require.Len(t, files, 2)
	assert.Equal(t, float64(12), files[0].(map[string]interface{})["size"])
	assert.Equal(t, float64(0), files[1].(map[string]interface{})["size"])
}

func filePayload(n int) []map[string]interface{} {
	files := make([]map[string]interface{}, n)
	for i := range files {
		files[i] = map[string]interface{}{
			"url":          fmt.Sprintf("https://cdn.example.com/%d.png", i),
			"originalName": fmt.Sprintf("%d.png", i),
			"mimeType":     "image/png",
		}
	}
	return files
}

func TestPostFileLimit(t *testing.T) {
	_, app := newTestApp(t)
	access, _ := signupAndLogin(t, app, "ada")

	status, created := doJSON(t, app, http.MethodPost, "/post", map[string]interface{}{
		"title": "ten", "content": "c", "files": filePayload(10),
	}, access)
	require.Equal(t, http.StatusCreated, status)
	path := fmt.Sprintf("/post/%v", created["id"])

	status, _ = doJSON(t, app, http.MethodPatch, path, map[string]interface{}{
		"title": "still ten", "content": "c", "files": filePayload(10),
	}, access)
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, app, http.MethodGet, path, nil, access)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["files"].([]interface{}), 10)

	status, body = doJSON(t, app, http.MethodPost, "/post", map[string]interface{}{
		"title": "eleven", "content": "c", "files": filePayload(11),
	}, access)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	status, _ = doJSON(t, app, http.MethodPatch, path, map[string]interface{}{
		"title": "eleven", "content": "c", "files": filePayload(11),
	}, access)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPostLifecycle(t *testing.T) {
	_, app := newTestApp(t)
	ada, _ := signupAndLogin(t, app, "ada")
	bob, _ := signupAndLogin(t, app, "bob")
	postID := createPostViaAPI(t, app, ada, "hello")
	path := fmt.Sprintf("/post/%d", postID)

	status, _ := doJSON(t, app, http.MethodPatch, path, map[string]interface{}{"title": "x", "content": "y"}, bob)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodPatch, path, map[string]interface{}{"title": "renamed", "content": "new"}, ada)
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, app, http.MethodDelete, path, nil, bob)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "not the post owner", body["error"])

	status, _ = doJSON(t, app, http.MethodDelete, path, nil, ada)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodGet, path, nil, ada)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doJSON(t, app, http.MethodDelete, path, nil, bob)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "not the post owner", body["error"])

	status, body = doJSON(t, app, http.MethodGet, "/post/abc", nil, ada)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid post ID", body["error"])
}

func TestListPostsAndLikes(t *testing.T) {
	_, app := newTestApp(t)
	ada, _ := signupAndLogin(t, app, "ada")
	bob, _ := signupAndLogin(t, app, "bob")
	first := createPostViaAPI(t, app, ada, "first")
	second := createPostViaAPI(t, app, ada, "second")

	status, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/like/%d", first), nil, bob)
	require.Equal(t, http.StatusOK, status)
	status, body := doJSON(t, app, http.MethodPost, fmt.Sprintf("/like/%d", first), nil, bob)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "already liked", body["error"])

	status, body = doJSON(t, app, http.MethodGet, "/post/list/posts?sortBy=like", nil, ada)
	require.Equal(t, http.StatusOK, status)
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 2)
	top := posts[0].(map[string]interface{})
	assert.Equal(t, float64(first), top["id"])
	assert.Equal(t, float64(1), top["likeCount"])
	assert.Equal(t, "Name ada", top["author"].(map[string]interface{})["name"])
	assert.Nil(t, body["nextCursor"])

	status, body = doJSON(t, app, http.MethodGet, "/post/list/posts", nil, ada)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(second), body["posts"].([]interface{})[0].(map[string]interface{})["id"])

	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/like/%d", first), nil, bob)
	require.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/like/%d", first), nil, bob)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSearchPostsEndpoint(t *testing.T) {
	_, app := newTestApp(t)
	ada, _ := signupAndLogin(t, app, "ada")
	createPostViaAPI(t, app, ada, "Gophers unite")

	status, body := doJSON(t, app, http.MethodGet, "/post/search?query=gopher&type=title_data", nil, ada)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["posts"].([]interface{}), 1)

	status, _ = doJSON(t, app, http.MethodGet, "/post/search?query=gopher&type=bogus", nil, ada)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCommentDeletion(t *testing.T) {
	_, app := newTestApp(t)
	ada, _ := signupAndLogin(t, app, "ada")
	bob, _ := signupAndLogin(t, app, "bob")
	postID := createPostViaAPI(t, app, ada, "hello")

	status, created := doJSON(t, app, http.MethodPost, "/comment", map[string]interface{}{"postId": postID, "content": "mine"}, ada)
	require.Equal(t, http.StatusCreated, status)
	path := fmt.Sprintf("/comment/%v", created["id"])

	status, _ = doJSON(t, app, http.MethodDelete, path, nil, bob)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, app, http.MethodDelete, path, nil, ada)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodDelete, path, nil, ada)
	assert.Equal(t, http.StatusNotFound, status)
}
