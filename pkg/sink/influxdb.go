package sink

import (
	"context"
	"net"
	"strconv"
	"time"

	client "github.com/influxdata/influxdb1-client/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kylerisse/hostalive/pkg/point"
)

// DefaultPort is the InfluxDB HTTP API port.
const DefaultPort = 8086

// InfluxDBConfig holds the connection parameters of the database.
type InfluxDBConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Timeout  time.Duration // zero means no client-side timeout
}

// Addr returns the base URL of the InfluxDB HTTP API.
func (c InfluxDBConfig) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return "http://" + net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// InfluxDB writes points to an InfluxDB 1.x database over HTTP.
type InfluxDB struct {
	cfg       InfluxDBConfig
	logger    *logrus.Logger
	newClient func(client.HTTPConfig) (client.Client, error)
}

// NewInfluxDB creates an InfluxDB sink. No connection is made until the
// first non-empty write.
func NewInfluxDB(cfg InfluxDBConfig, logger *logrus.Logger) *InfluxDB {
	return &InfluxDB{
		cfg:       cfg,
		logger:    logger,
		newClient: client.NewHTTPClient,
	}
}

// Write sends the batch in a single request. A client is created per
// write and closed afterwards.
func (i *InfluxDB) Write(ctx context.Context, points []point.Point) WriteResult {
	if len(points) == 0 {
		return WriteResult{}
	}

	fail := func(err error) WriteResult {
		return WriteResult{Err: &WriteError{Points: len(points), Err: err}}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	i.logger.Debugf("Writing %d point(s) to InfluxDB at %s...", len(points), i.cfg.Addr())

	c, err := i.newClient(client.HTTPConfig{
		Addr:     i.cfg.Addr(),
		Username: i.cfg.Username,
		Password: i.cfg.Password,
		Timeout:  i.cfg.Timeout,
	})
	if err != nil {
		return fail(errors.Wrapf(err, "create client for %s", i.cfg.Addr()))
	}
	defer c.Close()

	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database: i.cfg.Database,
	})
	if err != nil {
		return fail(errors.Wrap(err, "create batch"))
	}

	for _, p := range points {
		pt, err := client.NewPoint(p.Measurement, p.Tags, p.Fields)
		if err != nil {
			return fail(errors.Wrapf(err, "build point %s %v", p.Measurement, p.Tags))
		}
		bp.AddPoint(pt)
	}

	if err := c.Write(bp); err != nil {
		return fail(errors.Wrapf(err, "write to database %q", i.cfg.Database))
	}

	i.logger.Infof("Written %d point(s) to InfluxDB.", len(points))
	return WriteResult{Written: len(points)}
}
