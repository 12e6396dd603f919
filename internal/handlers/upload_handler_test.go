package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartImage(t *testing.T, field, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func postUpload(t *testing.T, srv *httptest.Server, token string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/upload", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestUploadImage(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signup(t, srv, "Dana", "dana@example.com")

	body, contentType := multipartImage(t, "image", "avatar.png", "image/png", []byte("pngbytes"))
	resp := postUpload(t, srv, token, body, contentType)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, strings.HasPrefix(out.URL, "/uploads/"), "returned path must be server-relative")
	assert.True(t, strings.HasSuffix(out.URL, ".png"))
}

func TestUploadImage_StoredExtensionComesFromContentType(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signup(t, srv, "Dana", "dana@example.com")

	// A valid image part must not be able to smuggle a servable .html file
	// into the uploads directory via its filename.
	body, contentType := multipartImage(t, "image", "evil.html", "image/png", []byte("<script>alert(1)</script>"))
	resp := postUpload(t, srv, token, body, contentType)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, strings.HasSuffix(out.URL, ".png"), "got %q, extension must come from the validated content type", out.URL)
	assert.NotContains(t, out.URL, ".html")
}

func TestUploadsDirectoryIsNotListable(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signup(t, srv, "Dana", "dana@example.com")

	body, contentType := multipartImage(t, "image", "avatar.png", "image/png", []byte("pngbytes"))
	resp := postUpload(t, srv, token, body, contentType)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	// The stored file itself is reachable
	fileResp, err := srv.Client().Get(srv.URL + out.URL)
	require.NoError(t, err)
	fileResp.Body.Close()
	assert.Equal(t, http.StatusOK, fileResp.StatusCode)

	// The bare directory is not
	dirResp, err := srv.Client().Get(srv.URL + "/uploads/")
	require.NoError(t, err)
	dirResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, dirResp.StatusCode)
}

func TestUploadImage_RejectsNonImage(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signup(t, srv, "Dana", "dana@example.com")

	body, contentType := multipartImage(t, "image", "notes.pdf", "application/pdf", []byte("%PDF"))
	resp := postUpload(t, srv, token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadImage_RequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	body, contentType := multipartImage(t, "image", "avatar.png", "image/png", []byte("pngbytes"))
	resp := postUpload(t, srv, "", body, contentType)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadImage_MissingField(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signup(t, srv, "Dana", "dana@example.com")

	body, contentType := multipartImage(t, "file", "avatar.png", "image/png", []byte("pngbytes"))
	resp := postUpload(t, srv, token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
