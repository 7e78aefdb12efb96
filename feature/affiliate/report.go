package affiliate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"affiliate-sync/core/reconcile"
	"affiliate-sync/core/storage"
	"affiliate-sync/feature/affiliate/feed"

	"github.com/minio/minio-go/v7"
)

// Report describes one reconciliation run.
type Report struct {
	ID         string                 `json:"id"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
	DryRun     bool                   `json:"dry_run"`
	Confirmed  bool                   `json:"confirmed"`
	Feed       *feed.LoadReport       `json:"feed"`
	Summary    reconcile.PlanSummary  `json:"summary"`
	Actions    []reconcile.Action     `json:"actions"`
	Result     *reconcile.ApplyResult `json:"result,omitempty"`
	Location   string                 `json:"location,omitempty"`
}

// ReportSink archives run reports.
type ReportSink interface {
	Save(ctx context.Context, r *Report) (string, error)
	List(ctx context.Context) ([]string, error)
}

// ObjectReportSink stores reports as JSON objects under a prefix.
type ObjectReportSink struct {
	client storage.Client
	bucket string
	prefix string
}

// NewObjectReportSink creates a sink writing to bucket under prefix.
func NewObjectReportSink(client storage.Client, bucket, prefix string) *ObjectReportSink {
	return &ObjectReportSink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Save uploads the report and returns its object name.
func (s *ObjectReportSink) Save(ctx context.Context, r *Report) (string, error) {
	name := path.Join(s.prefix, r.StartedAt.UTC().Format("2006/01/02"), r.ID+".json")

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", name, err)
	}
	return name, nil
}

// List returns archived report names, newest first.
func (s *ObjectReportSink) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix + "/", Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			names = append(names, obj.Key)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}
