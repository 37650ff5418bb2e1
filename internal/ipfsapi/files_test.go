package ipfsapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithBaseURL(srv.URL + "/api/v0")
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestFilesList(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v0/files/ls", r.URL.Path)
		assert.Equal(t, "/dst", r.URL.Query().Get("arg"))
		assert.Equal(t, "true", r.URL.Query().Get("long"))
		writeJSON(w, http.StatusOK, `{"Entries":[{"Name":"a.txt","Type":0,"Size":10,"Hash":"QmA"},{"Name":"b","Type":1,"Size":0,"Hash":"QmB"}]}`)
	}))

	entries, err := client.Files.List(context.Background(), "/dst")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, FilesEntry{Name: "a.txt", Type: TypeFile, Size: 10, Hash: "QmA"}, entries[0])
	assert.Equal(t, TypeDirectory, entries[1].Type)
}

func TestFilesStat(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/files/stat", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"Hash":"QmRoot","Size":0,"CumulativeSize":123,"Blocks":2,"Type":"directory"}`)
	}))

	stat, err := client.Files.Stat(context.Background(), "/dst")
	require.NoError(t, err)
	assert.Equal(t, "QmRoot", stat.Hash)
	assert.Equal(t, "directory", stat.Type)
}

func TestFilesFlush(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/files/flush", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"Cid":"QmFinal"}`)
	}))

	cid, err := client.Files.Flush(context.Background(), "/dst")
	require.NoError(t, err)
	assert.Equal(t, "QmFinal", cid)
}

func TestFilesCopyHash_RemovesExistingFirst(t *testing.T) {
	var calls []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/api/v0/files/rm":
			// Nothing there yet: daemon answers with its error envelope.
			writeJSON(w, http.StatusInternalServerError, `{"Message":"file does not exist","Code":0,"Type":"error"}`)
		case "/api/v0/files/cp":
			assert.Equal(t, []string{"/ipfs/QmX", "/dst/f"}, r.URL.Query()["arg"])
			writeJSON(w, http.StatusOK, `{}`)
		default:
			t.Errorf("unexpected call %s", r.URL.Path)
		}
	}))

	err := client.Files.CopyHash(context.Background(), "QmX", "/dst/f")
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/v0/files/rm", "/api/v0/files/cp"}, calls)
}

func TestFilesRemove_AutoFlushParam(t *testing.T) {
	var seen []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query().Get("flush"))
		writeJSON(w, http.StatusOK, `{}`)
	}))

	require.NoError(t, client.Files.Remove(context.Background(), "/dst/x", true))
	client.Files.SetAutoFlush(false)
	require.NoError(t, client.Files.Remove(context.Background(), "/dst/x", true))

	assert.Equal(t, []string{"true", "false"}, seen)
}

func TestFilesStat_NotExist(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"Message":"file does not exist","Code":0,"Type":"error"}`)
	}))

	_, err := client.Files.Stat(context.Background(), "/dst/nope")
	require.Error(t, err)
	assert.True(t, IsNotExist(err))
}

func TestUnixfsAdd(t *testing.T) {
	dir := t.TempDir()
	localPath := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(localPath, []byte("data"), 0o644))

	t.Run("streams content", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v0/add", r.URL.Path)
			assert.Equal(t, "false", r.URL.Query().Get("pin"))
			assert.Equal(t, "false", r.URL.Query().Get("nocopy"))

			reader, err := r.MultipartReader()
			require.NoError(t, err)
			part, err := reader.NextPart()
			require.NoError(t, err)
			body, err := io.ReadAll(part)
			require.NoError(t, err)
			assert.Equal(t, "data", string(body))
			assert.Empty(t, part.Header.Get("Abspath"))

			writeJSON(w, http.StatusOK, `{"Name":"f.txt","Hash":"QmAdded","Size":"12"}`)
		}))

		hash, err := client.Unixfs.Add(context.Background(), localPath, false)
		require.NoError(t, err)
		assert.Equal(t, "QmAdded", hash)
	})

	t.Run("nocopy sends abspath", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "true", r.URL.Query().Get("nocopy"))

			reader, err := r.MultipartReader()
			require.NoError(t, err)
			part, err := reader.NextPart()
			require.NoError(t, err)
			io.Copy(io.Discard, part)
			assert.Equal(t, localPath, part.Header.Get("Abspath"))

			writeJSON(w, http.StatusOK, `{"Name":"f.txt","Hash":"QmRef","Size":"12"}`)
		}))

		hash, err := client.Unixfs.Add(context.Background(), localPath, true)
		require.NoError(t, err)
		assert.Equal(t, "QmRef", hash)
	})

	t.Run("missing local file fails", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))

		_, err := client.Unixfs.Add(context.Background(), filepath.Join(dir, "nope"), false)
		assert.Error(t, err)
	})
}
