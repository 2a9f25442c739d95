package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tanadol/relay-go/internal/config"
)

var _ = Describe("Config", func() {
	Describe("Validate", func() {
		It("requires a target username", func() {
			cfg := &config.Config{}
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("fills defaults for everything else", func() {
			cfg := &config.Config{TargetUsername: "glasswire"}
			Expect(cfg.Validate()).To(Succeed())

			Expect(cfg.Timezone).To(Equal(config.DefaultTimezone))
			Expect(cfg.PollInterval).To(Equal(20 * time.Minute))
			Expect(cfg.FreshnessWindow).To(Equal(60 * time.Minute))
			Expect(cfg.Retention).To(Equal(7 * 24 * time.Hour))
			Expect(cfg.MinContentChars).To(Equal(10))
			Expect(cfg.StatusAddr).To(Equal(":8080"))
		})

		It("keeps explicit values", func() {
			cfg := &config.Config{
				TargetUsername: "glasswire",
				PollInterval:   5 * time.Minute,
				Timezone:       "UTC",
			}
			Expect(cfg.Validate()).To(Succeed())
			Expect(cfg.PollInterval).To(Equal(5 * time.Minute))
			Expect(cfg.Timezone).To(Equal("UTC"))
		})
	})

	Describe("Load", func() {
		AfterEach(func() {
			os.Unsetenv("RELAY_TARGET_USERNAME")
		})

		It("reads the target from the environment", func() {
			os.Setenv("RELAY_TARGET_USERNAME", "glasswire")

			cfg, err := config.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.TargetUsername).To(Equal("glasswire"))
			Expect(cfg.PollInterval).To(Equal(20 * time.Minute))
		})

		It("fails without a target username", func() {
			_, err := config.Load()
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("LoadCredentials", func() {
	credentialVars := []string{
		"X_BEARER_TOKEN_1", "X_CONSUMER_KEY_1", "X_CONSUMER_SECRET_1",
		"X_ACCESS_TOKEN_1", "X_ACCESS_TOKEN_SECRET_1",
		"X_BEARER_TOKEN_2", "X_BEARER_TOKEN_3",
	}

	AfterEach(func() {
		for _, name := range credentialVars {
			os.Unsetenv(name)
		}
	})

	It("fails when no credentials are set", func() {
		_, err := config.LoadCredentials()
		Expect(err).To(HaveOccurred())
	})

	It("loads numbered credential sets in order", func() {
		os.Setenv("X_BEARER_TOKEN_1", "bearer-1")
		os.Setenv("X_CONSUMER_KEY_1", "key-1")
		os.Setenv("X_CONSUMER_SECRET_1", "secret-1")
		os.Setenv("X_ACCESS_TOKEN_1", "token-1")
		os.Setenv("X_ACCESS_TOKEN_SECRET_1", "token-secret-1")
		os.Setenv("X_BEARER_TOKEN_2", "bearer-2")

		creds, err := config.LoadCredentials()
		Expect(err).NotTo(HaveOccurred())
		Expect(creds).To(HaveLen(2))
		Expect(creds[0].ID).To(Equal("account_1"))
		Expect(creds[0].ConsumerSecret).To(Equal("secret-1"))
		Expect(creds[1].ID).To(Equal("account_2"))
		Expect(creds[1].BearerToken).To(Equal("bearer-2"))
	})

	It("stops at the first gap in numbering", func() {
		os.Setenv("X_BEARER_TOKEN_1", "bearer-1")
		os.Setenv("X_BEARER_TOKEN_3", "bearer-3")

		creds, err := config.LoadCredentials()
		Expect(err).NotTo(HaveOccurred())
		Expect(creds).To(HaveLen(1))
	})
})
