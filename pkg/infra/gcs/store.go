package gcs

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	"github.com/cytomine/stevedore/pkg/domain/model"
)

type store struct {
	client *storage.Client
	bucket string
}

// New creates a Cloud Storage backed artifact store. Object expiry is driven
// by a bucket lifecycle rule on CustomTime; PutReport stamps each object so
// reports age out after model.ReportRetentionDays.
func New(ctx context.Context, bucket string, opts ...option.ClientOption) (interfaces.ArtifactStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	return &store{client: client, bucket: bucket}, nil
}

// PutReport uploads the report under the run's namespace and returns its URL.
func (s *store) PutReport(ctx context.Context, runID string, report *model.TestReport) (string, error) {
	objectName := report.ObjectName(runID)
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)

	w.ContentType = contentType(report.FileName)
	w.CustomTime = time.Now().UTC()
	w.Metadata = map[string]string{
		"run_id":         runID,
		"retention_days": strconv.Itoa(model.ReportRetentionDays),
	}

	if _, err := w.Write(report.Data); err != nil {
		return "", goerr.Wrap(err, "failed to write report object",
			goerr.V("bucket", s.bucket), goerr.V("object", objectName))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize report object",
			goerr.V("bucket", s.bucket), goerr.V("object", objectName))
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

func contentType(fileName string) string {
	if ct := mime.TypeByExtension(path.Ext(fileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
