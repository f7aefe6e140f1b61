package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okalab/okalab-backend/internal/logger"
)

const jobTimeout = time.Minute

// Scheduler обёртка над cron с логированием и таймаутом на запуск.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{}))),
	}
}

// AddPaymentWindowJob регистрирует напоминания. Расписание в стандартном формате cron из 5 полей.
func (s *Scheduler) AddPaymentWindowJob(spec string, job *PaymentWindowJob) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if _, err := job.Run(ctx); err != nil {
			logger.Log.WithError(err).Error("payment window job failed")
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Log.WithField("jobs", len(s.cron.Entries())).Info("scheduler started")
}

// Stop ждёт завершения запущенных задач или отмены ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.Log.Warn("scheduler stop timed out")
	}
}

// cronLogger пишет события cron в logrus.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	f := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			f[key] = keysAndValues[i+1]
		}
	}
	return f
}
