package agent_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/tanadol/relay-go/pkg/agent"
)

type countingRunner struct{ cycles atomic.Int64 }

func (r *countingRunner) RunCycle(ctx context.Context) error {
	r.cycles.Add(1)
	return nil
}

type countingPruner struct {
	calls   atomic.Int64
	cutoffs chan time.Time
}

func (p *countingPruner) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	p.calls.Add(1)
	select {
	case p.cutoffs <- olderThan:
	default:
	}
	return 0, nil
}

type countingTrimmer struct{ calls atomic.Int64 }

func (t *countingTrimmer) TrimIndexes(maxIDs, maxFingerprints int) {
	t.calls.Add(1)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

var _ = Describe("IngestTask", func() {
	It("runs a cycle immediately and then on each tick", func() {
		runner := &countingRunner{}
		task := agent.NewIngestTask(runner, quietLogger(), 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- task.Run(ctx) }()

		Eventually(func() int64 { return runner.cycles.Load() }).Should(BeNumerically(">=", 3))

		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	It("stops cleanly", func() {
		runner := &countingRunner{}
		task := agent.NewIngestTask(runner, quietLogger(), time.Hour)

		done := make(chan error, 1)
		go func() { done <- task.Run(context.Background()) }()

		Eventually(func() int64 { return runner.cycles.Load() }).Should(Equal(int64(1)))
		task.Stop()
		Eventually(done).Should(Receive(BeNil()))
	})

	It("reports its type", func() {
		task := agent.NewIngestTask(&countingRunner{}, quietLogger(), time.Hour)
		Expect(task.Type()).To(Equal(agent.TaskIngest))
	})
})

var _ = Describe("PruneTask", func() {
	It("prunes with the retention cutoff on each tick", func() {
		pruner := &countingPruner{cutoffs: make(chan time.Time, 1)}
		task := agent.NewPruneTask(pruner, quietLogger(), 10*time.Millisecond, 7*24*time.Hour)

		done := make(chan error, 1)
		go func() { done <- task.Run(context.Background()) }()

		var cutoff time.Time
		Eventually(pruner.cutoffs).Should(Receive(&cutoff))
		Expect(time.Since(cutoff)).To(BeNumerically("~", 7*24*time.Hour, time.Minute))

		task.Stop()
		Eventually(done).Should(Receive(BeNil()))
	})
})

var _ = Describe("CacheTrimTask", func() {
	It("trims indexes on each tick and tolerates a missing translator", func() {
		trimmer := &countingTrimmer{}
		task := agent.NewCacheTrimTask(trimmer, nil, quietLogger(), 10*time.Millisecond)

		done := make(chan error, 1)
		go func() { done <- task.Run(context.Background()) }()

		Eventually(func() int64 { return trimmer.calls.Load() }).Should(BeNumerically(">=", 2))

		task.Stop()
		Eventually(done).Should(Receive(BeNil()))
	})
})
