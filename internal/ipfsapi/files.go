package ipfsapi

import (
	"context"
	"strconv"

	"github.com/imroc/req/v3"
)

const (
	v0FilesLs    = "/files/ls"
	v0FilesMkdir = "/files/mkdir"
	v0FilesRm    = "/files/rm"
	v0FilesStat  = "/files/stat"
	v0FilesCp    = "/files/cp"
	v0FilesFlush = "/files/flush"
)

// FilesAPI wraps the mutable files (MFS) endpoints.
type FilesAPI struct {
	client    *req.Client
	autoFlush bool
}

func newFilesAPI(client *req.Client) *FilesAPI {
	return &FilesAPI{
		client:    client,
		autoFlush: true,
	}
}

// SetAutoFlush controls whether mutating calls ask the daemon to commit
// on every write. Disabled when an explicit flush cadence is managed by
// the caller.
func (f *FilesAPI) SetAutoFlush(enabled bool) {
	f.autoFlush = enabled
}

// List returns the children of the MFS directory at path, with sizes and
// hashes.
func (f *FilesAPI) List(ctx context.Context, path string) ([]FilesEntry, error) {
	var out FilesLsResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("arg", path).
		SetQueryParam("long", "true").
		SetSuccessResult(&out).
		Post(v0FilesLs)

	if err := handleAPIError(resp, err, "files ls"); err != nil {
		return nil, err
	}

	return out.Entries, nil
}

// Mkdir creates the MFS directory at path, including missing parents.
func (f *FilesAPI) Mkdir(ctx context.Context, path string) error {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("arg", path).
		SetQueryParam("parents", "true").
		SetQueryParam("flush", strconv.FormatBool(f.autoFlush)).
		Post(v0FilesMkdir)

	return handleAPIError(resp, err, "files mkdir")
}

// Remove deletes the MFS entry at path. Non-empty directories require
// recursive.
func (f *FilesAPI) Remove(ctx context.Context, path string, recursive bool) error {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("arg", path).
		SetQueryParam("recursive", strconv.FormatBool(recursive)).
		SetQueryParam("force", "true").
		SetQueryParam("flush", strconv.FormatBool(f.autoFlush)).
		Post(v0FilesRm)

	return handleAPIError(resp, err, "files rm")
}

// Stat returns hash and size information for the MFS entry at path.
func (f *FilesAPI) Stat(ctx context.Context, path string) (*FilesStatResponse, error) {
	var out FilesStatResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("arg", path).
		SetSuccessResult(&out).
		Post(v0FilesStat)

	if err := handleAPIError(resp, err, "files stat"); err != nil {
		return nil, err
	}

	return &out, nil
}

// CopyHash places the content identified by hash at the MFS path dst,
// replacing whatever is there. The files API refuses to overwrite, so an
// existing entry is removed first.
func (f *FilesAPI) CopyHash(ctx context.Context, hash string, dst string) error {
	if err := f.Remove(ctx, dst, true); err != nil && !IsNotExist(err) {
		return err
	}

	resp, err := f.client.R().
		SetContext(ctx).
		AddQueryParam("arg", "/ipfs/"+hash).
		AddQueryParam("arg", dst).
		SetQueryParam("flush", strconv.FormatBool(f.autoFlush)).
		Post(v0FilesCp)

	return handleAPIError(resp, err, "files cp")
}

// Flush commits pending changes under path and returns the resulting CID.
func (f *FilesAPI) Flush(ctx context.Context, path string) (string, error) {
	var out FilesFlushResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("arg", path).
		SetSuccessResult(&out).
		Post(v0FilesFlush)

	if err := handleAPIError(resp, err, "files flush"); err != nil {
		return "", err
	}

	return out.Cid, nil
}
