package services

import (
	"context"

	"campusnet/pkg/metrics"
	"campusnet/pkg/reconcile"

	"github.com/ServiceWeaver/weaver"
	"github.com/robfig/cron/v3"
)

type ReconcilerService interface {
	// ReconcilerService does not expose any rpc methods
}

type reconcilerServiceOptions struct {
	MongoDBAddr string `toml:"mongodb_address"`
	MongoDBPort int    `toml:"mongodb_port"`
	Schedule    string `toml:"schedule"`
}

type reconcilerService struct {
	weaver.Implements[ReconcilerService]
	weaver.WithConfig[reconcilerServiceOptions]
	cron *cron.Cron
}

const DEFAULT_RECONCILE_SCHEDULE = "@every 10m"

func (r *reconcilerService) Init(ctx context.Context) error {
	logger := r.Logger(ctx)

	_, stores, err := openMongo(ctx, logger, r.Config().MongoDBAddr, r.Config().MongoDBPort)
	if err != nil {
		return err
	}
	checker := &reconcile.Checker{Stores: stores, Logger: logger}

	schedule := r.Config().Schedule
	if schedule == "" {
		schedule = DEFAULT_RECONCILE_SCHEDULE
	}
	r.cron = cron.New()
	_, err = r.cron.AddFunc(schedule, func() {
		report, err := checker.Run(context.Background())
		if err != nil {
			logger.Error("error running consistency check", "msg", err.Error())
			return
		}
		for kind, n := range report.Counts() {
			metrics.Inconsistencies.Get(metrics.InconsistencyLabel{Kind: string(kind)}).Add(float64(n))
		}
		logger.Debug("consistency check done", "users", report.Users, "posts", report.Posts, "findings", len(report.Findings))
	})
	if err != nil {
		logger.Error("error scheduling consistency check", "schedule", schedule, "msg", err.Error())
		return err
	}
	r.cron.Start()

	logger.Info("reconciler service running!", "schedule", schedule,
		"mongodb_addr", r.Config().MongoDBAddr, "mongodb_port", r.Config().MongoDBPort,
	)
	return nil
}

func (r *reconcilerService) Shutdown(ctx context.Context) error {
	select {
	case <-r.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
