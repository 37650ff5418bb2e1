package ipfsapi

// Entry type codes reported by files/ls, matching kubo's unixfs types.
const (
	TypeFile      = 0
	TypeDirectory = 1
)

// FilesEntry is one child of an MFS directory.
type FilesEntry struct {
	Name string `json:"Name"`
	Type int    `json:"Type"`
	Size int64  `json:"Size"`
	Hash string `json:"Hash"`
}

type FilesLsResponse struct {
	Entries []FilesEntry `json:"Entries"`
}

type FilesStatResponse struct {
	Hash           string `json:"Hash"`
	Size           int64  `json:"Size"`
	CumulativeSize int64  `json:"CumulativeSize"`
	Blocks         int    `json:"Blocks"`
	Type           string `json:"Type"`
}

type FilesFlushResponse struct {
	Cid string `json:"Cid"`
}

// AddResponse is the final object emitted by the add endpoint.
type AddResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}
