package integration

import (
	"context"
	"fmt"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/tanadol/relay-go/pkg/relay"
)

var _ = Describe("RelaySend", func() {
	var (
		sink   *relay.Sink
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		// Skip if not running integration tests
		if os.Getenv("INTEGRATION_TESTS") != "true" {
			Skip("Skipping integration test")
		}

		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)

		config, err := relay.NewConfig(logger)
		Expect(err).NotTo(HaveOccurred(), "DISCORD_BOT_TOKEN and DISCORD_CHANNEL_ID are required")

		sink, err = relay.New(config)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	})

	AfterEach(func() {
		if cancel != nil {
			cancel()
		}
	})

	It("delivers a text message to the configured channel", func() {
		err := sink.Send(ctx, relay.Message{
			PostID: "integration-test",
			Text:   fmt.Sprintf("Integration test message %d", time.Now().Unix()),
		})
		Expect(err).NotTo(HaveOccurred())
	})
})
