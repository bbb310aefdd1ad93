package services

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/soaringjerry/clima/internal/models"
)

// SnapshotStore persists the whole response collection as one opaque
// snapshot. It is never synced partially.
type SnapshotStore interface {
	Load(ctx context.Context) ([]models.StoredResponse, error)
	Save(ctx context.Context, snapshot []models.StoredResponse) error
}

// SnapshotBackup is implemented by stores that can set an unreadable
// snapshot aside before the next save overwrites it. Backup returns where the
// old data went, or "" when there was nothing to keep.
type SnapshotBackup interface {
	Backup(ctx context.Context) (string, error)
}

//go:embed schemas/snapshot.schema.json
var snapshotSchema []byte

var snapshotSchemaLoader = gojsonschema.NewBytesLoader(snapshotSchema)

// MarshalSnapshot renders responses as the pretty-printed JSON document used
// both for persistence and for downloads.
func MarshalSnapshot(responses []models.StoredResponse) ([]byte, error) {
	if responses == nil {
		responses = []models.StoredResponse{}
	}
	return json.MarshalIndent(responses, "", "  ")
}

// UnmarshalSnapshot checks data against the snapshot JSON schema before
// decoding it. Empty input decodes to an empty snapshot.
func UnmarshalSnapshot(data []byte) ([]models.StoredResponse, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.StoredResponse{}, nil
	}
	result, err := gojsonschema.Validate(snapshotSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, newValidationError("snapshot", "malformed JSON: %v", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, newValidationError("snapshot", "%s", strings.Join(msgs, "; "))
	}
	var out []models.StoredResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, newValidationError("snapshot", "decode: %v", err)
	}
	if out == nil {
		out = []models.StoredResponse{}
	}
	return out, nil
}
