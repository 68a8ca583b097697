//go:build !gcloud

package cyclerecorder

import (
	"context"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.CycleResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "cycle result recording disabled")
		return Discard, nil
	}

	if !cfg.InfluxDB.Configured() {
		slog.DebugContext(ctx, "InfluxDB token or org not configured, cycle result recording disabled",
			slog.String("url", cfg.InfluxDB.URL),
		)
		return Discard, nil
	}

	client := influxdb2.NewClient(cfg.InfluxDB.URL, cfg.InfluxDB.Token)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDB.Org, cfg.InfluxDB.Bucket)

	slog.InfoContext(ctx, "cycle result recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDB.URL),
		slog.String("bucket", cfg.InfluxDB.Bucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDB.Bucket,
		org:      cfg.InfluxDB.Org,
	}, nil
}

func (r *influxDBRecorder) RecordCycle(ctx context.Context, record domain.CycleRecord) error {
	point := influxdb2.NewPoint(measurement, cycleTags(record), cycleFields(record), record.StartedAt)

	if err := r.writeAPI.WritePoint(ctx, point); err != nil {
		slog.WarnContext(ctx, "failed to write cycle result to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("outcome", record.Outcome),
		)
	}

	return nil
}

func (r *influxDBRecorder) Flush(ctx context.Context) error {
	return r.writeAPI.Flush(ctx)
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}
