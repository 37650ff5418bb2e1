package ipfsapi

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/imroc/req/v3"
)

const v0Add = "/add"

// UnixfsAPI wraps the content-adding endpoint.
type UnixfsAPI struct {
	client *req.Client
}

func newUnixfsAPI(client *req.Client) *UnixfsAPI {
	return &UnixfsAPI{client: client}
}

// Add imports the file at localPath into the store and returns its
// content hash. Pinning is disabled: the content's survival is tied to
// the MFS reference the caller creates afterwards. With nocopy the
// daemon's filestore indexes the file in place instead of copying its
// bytes; localPath must then be absolute and visible to the daemon.
func (u *UnixfsAPI) Add(ctx context.Context, localPath string, nocopy bool) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer file.Close()

	body, contentType := multipartFileBody(file, localPath, nocopy)

	var out AddResponse
	resp, err := u.client.R().
		SetContext(ctx).
		SetQueryParam("quieter", "true").
		SetQueryParam("pin", "false").
		SetQueryParam("nocopy", fmt.Sprintf("%t", nocopy)).
		SetContentType(contentType).
		SetBody(body).
		SetSuccessResult(&out).
		Post(v0Add)

	if err := handleAPIError(resp, err, "add"); err != nil {
		return "", err
	}

	if out.Hash == "" {
		return "", fmt.Errorf("add: daemon returned no hash for %s", localPath)
	}

	return out.Hash, nil
}

// multipartFileBody streams content as the single multipart part the add
// endpoint expects. The filestore locates the original file through the
// Abspath part header.
func multipartFileBody(content io.Reader, localPath string, nocopy bool) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(localPath)))
		header.Set("Content-Type", "application/octet-stream")
		if nocopy {
			header.Set("Abspath", localPath)
		}

		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	return pr, mw.FormDataContentType()
}
