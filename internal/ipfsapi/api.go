package ipfsapi

import (
	"fmt"
	"net"
	"strconv"

	"github.com/imroc/req/v3"

	"github.com/jcaesar/ipfs-sync/internal/version"
)

// Client is an HTTP RPC client for a kubo daemon's /api/v0 surface.
type Client struct {
	http *req.Client

	Files  *FilesAPI
	Unixfs *UnixfsAPI
}

// New creates a client for the daemon API listening at host:port.
func New(host string, port int) *Client {
	baseURL := fmt.Sprintf("http://%s/api/v0", net.JoinHostPort(host, strconv.Itoa(port)))
	return NewWithBaseURL(baseURL)
}

// NewWithBaseURL creates a client against a full API base URL, e.g.
// "http://127.0.0.1:5001/api/v0".
func NewWithBaseURL(baseURL string) *Client {
	client := req.C().
		SetBaseURL(baseURL).
		SetUserAgent("ipfs-sync/" + version.Version).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal).
		SetCommonErrorResult(&APIError{})

	return &Client{
		http:   client,
		Files:  newFilesAPI(client),
		Unixfs: newUnixfsAPI(client),
	}
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}
