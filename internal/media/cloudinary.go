package media

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/streambox/backend/internal/config"
)

// CloudinaryGateway talks to the hosted Cloudinary account that stores video
// objects. It implements both Gateway and UploadSigner.
type CloudinaryGateway struct {
	client *cloudinary.Cloudinary
	cfg    config.CloudinaryConfig

	now func() time.Time
}

// NewCloudinaryGateway constructs a gateway from account credentials.
func NewCloudinaryGateway(cfg config.CloudinaryConfig) (*CloudinaryGateway, error) {
	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary client: %w", err)
	}

	return &CloudinaryGateway{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}, nil
}

// Destroy removes the video object identified by publicID from the media host.
// An already-missing object is not an error; the metadata row is the source of
// truth for what should exist.
func (g *CloudinaryGateway) Destroy(ctx context.Context, publicID string) error {
	res, err := g.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "video",
	})
	if err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}

	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("destroy %s: unexpected result %q", publicID, res.Result)
	}

	return nil
}

// SignUpload produces a time-boxed upload grant for the provided folder. The
// transformation string is included in the signed parameter set only when
// requested, and echoed to the client only when it was actually signed.
func (g *CloudinaryGateway) SignUpload(folder string, withTransformation bool) (UploadGrant, error) {
	timestamp := g.now().Unix()

	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))
	params.Set("folder", folder)
	if withTransformation {
		params.Set("transformation", Transformation)
	}

	signature, err := api.SignParameters(params, g.cfg.APISecret)
	if err != nil {
		return UploadGrant{}, fmt.Errorf("sign upload parameters: %w", err)
	}

	grant := UploadGrant{
		Timestamp: timestamp,
		Signature: signature,
		CloudName: g.cfg.CloudName,
		APIKey:    g.cfg.APIKey,
		Folder:    folder,
	}
	if withTransformation {
		grant.Transformation = Transformation
	}

	return grant, nil
}

var _ Gateway = (*CloudinaryGateway)(nil)
var _ UploadSigner = (*CloudinaryGateway)(nil)
