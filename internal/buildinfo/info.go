package buildinfo

import "fmt"

var (
	Version    = "v1.0.0"
	CommitHash = "unknown"
)

type Info struct {
	About      string `json:"about,omitempty"`
	Service    string `json:"service,omitempty"`
	Version    string `json:"version,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
}

func GetBuildInfo() Info {
	return Info{
		About:      "https://github.com/darmiel/chatsts",
		Service:    "chatsts",
		Version:    Version,
		CommitHash: CommitHash,
	}
}

// UserAgent is sent by the Go client.
func UserAgent() string {
	return fmt.Sprintf("chatsts-client/%s (commit=%s)", Version, CommitHash)
}
