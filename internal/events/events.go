package events

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"doctransfer/internal/service"
)

// s3Notification is the S3 event notification document sent by MinIO and AWS.
type s3Notification struct {
	Records []struct {
		EventName string `json:"eventName"`
		S3        struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key  string `json:"key"`
				Size int64  `json:"size"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// DecodeS3Event parses an S3 notification body into upload events.
// Records that are not object-created events are dropped. Keys arrive URL-encoded.
func DecodeS3Event(body []byte) ([]service.UploadEvent, error) {
	var n s3Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("decode s3 event: %w", err)
	}

	out := make([]service.UploadEvent, 0, len(n.Records))
	for _, r := range n.Records {
		if r.EventName != "" && !isObjectCreated(r.EventName) {
			continue
		}
		key, err := url.QueryUnescape(r.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("decode object key %q: %w", r.S3.Object.Key, err)
		}
		out = append(out, service.UploadEvent{
			Bucket: r.S3.Bucket.Name,
			Key:    key,
			Size:   r.S3.Object.Size,
		})
	}
	return out, nil
}

func isObjectCreated(name string) bool {
	return strings.HasPrefix(strings.TrimPrefix(name, "s3:"), "ObjectCreated:")
}
