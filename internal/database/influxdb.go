package database

import (
	"context"
	"fmt"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
)

const influxMeasurement = "narodmon_aggregate"

// InfluxRepo writes aggregates to an InfluxDB 2.x bucket.
type InfluxRepo struct {
	client influxdb2.Client
	writer api.WriteAPIBlocking
}

func NewInfluxRepo(url, token, org, bucket string) (*InfluxRepo, error) {
	if url == "" || org == "" || bucket == "" {
		return nil, fmt.Errorf("influx url, org and bucket are required")
	}
	client := influxdb2.NewClient(url, token)
	return &InfluxRepo{
		client: client,
		writer: client.WriteAPIBlocking(org, bucket),
	}, nil
}

func (r *InfluxRepo) Name() string {
	return "influx"
}

// Publish writes one point per aggregate.
func (r *InfluxRepo) Publish(ctx context.Context, aggregates []models.Aggregate) error {
	if len(aggregates) == 0 {
		return nil
	}
	points := make([]*write.Point, 0, len(aggregates))
	for _, a := range aggregates {
		points = append(points, aggregatePoint(a))
	}
	if err := r.writer.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("failed to write points: %w", err)
	}
	return nil
}

func (r *InfluxRepo) Close() error {
	r.client.Close()
	return nil
}

func aggregatePoint(a models.Aggregate) *write.Point {
	return influxdb2.NewPoint(
		influxMeasurement,
		map[string]string{
			"type_id":   strconv.Itoa(a.TypeID),
			"type_name": a.Type.Name,
			"unit":      a.Type.Unit,
		},
		map[string]interface{}{
			"mean":    a.Mean,
			"samples": a.Count,
			"devices": a.Devices,
		},
		a.At,
	)
}
