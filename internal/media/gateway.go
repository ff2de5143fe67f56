package media

import (
	"context"
	"fmt"
)

// Gateway abstracts the remote media host that owns the actual video bytes.
// Implementations are addressed by the opaque public id stored on each video
// row.
type Gateway interface {
	Destroy(ctx context.Context, publicID string) error
}

// UploadGrant is a short-lived signed parameter set authorizing a direct
// client-to-host upload. It is never persisted; the media host enforces the
// validity window implied by the timestamp.
type UploadGrant struct {
	Timestamp      int64  `json:"timestamp"`
	Signature      string `json:"signature"`
	CloudName      string `json:"cloudName"`
	APIKey         string `json:"apiKey"`
	Folder         string `json:"folder"`
	Transformation string `json:"transformation,omitempty"`
}

// UploadSigner produces upload grants without exposing the host's long-lived
// secret to clients.
type UploadSigner interface {
	SignUpload(folder string, withTransformation bool) (UploadGrant, error)
}

// Transformation is the fixed transcoding parameter set applied on upload when
// the client opts in. Only ever sent to clients as part of a signed grant.
const Transformation = "f_mp4,q_auto:eco,vc_h264,ac_aac,br_1200k,w_1280,h_720,c_limit"

// UploadFolder derives the per-user folder on the media host from the caller's
// identity. The folder is never client-supplied, which keeps one user from
// signing uploads into another user's namespace.
func UploadFolder(email string) string {
	return fmt.Sprintf("StreamBox/videos/%s", email)
}
