//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/msplatform/mspadm/internal/platformtest"
	"github.com/msplatform/mspadm/pkg/admin"
)

// These tests exercise the full admin workflow against in-process fake
// platform instances: a healthy one, a degraded one with a broken deploy
// endpoint, and one that is completely unreachable.
var _ = Describe("Admin workflow", Ordered, Label("integration"), func() {
	const apiKey = "e2e-admin-key"

	var (
		ctx      context.Context
		cancel   context.CancelFunc
		healthy  *platformtest.Instance
		degraded *platformtest.Instance
		servers  []*httptest.Server
		fleet    []string
		client   *admin.Client
	)

	BeforeAll(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Minute)

		By("starting a healthy instance")
		healthy = platformtest.New(
			platformtest.WithAPIKey(apiKey),
			platformtest.WithHealthSummary("healthy", 12),
		)
		healthySrv := httptest.NewServer(healthy.Handler())
		servers = append(servers, healthySrv)

		By("starting a degraded instance whose deploy endpoint is down")
		degraded = platformtest.New(
			platformtest.WithAPIKey(apiKey),
			platformtest.WithHealthSummary("degraded", 4),
			platformtest.WithEndpointError("/api/admin/integrations/deploy",
				http.StatusServiceUnavailable, "maintenance window"),
		)
		degradedSrv := httptest.NewServer(degraded.Handler())
		servers = append(servers, degradedSrv)

		By("reserving an address with nothing listening on it")
		downSrv := httptest.NewServer(http.NotFoundHandler())
		downURL := downSrv.URL
		downSrv.Close()

		fleet = []string{healthySrv.URL, degradedSrv.URL, downURL}
		client = admin.New(admin.Config{Credential: apiKey})
		GinkgoWriter.Printf("fleet under test: %v\n", fleet)
	})

	AfterAll(func() {
		for _, srv := range servers {
			srv.Close()
		}
		cancel()
	})

	It("pings a reachable instance", func() {
		res := client.Ping(ctx, fleet[0])
		Expect(res.OK()).To(BeTrue(), "ping should succeed: %s", res.Err)
	})

	It("reads system info", func() {
		res := client.SystemInfo(ctx, fleet[0])
		Expect(res.OK()).To(BeTrue())

		var info struct {
			Data struct {
				Version  string `mapstructure:"version"`
				Database struct {
					Status string `mapstructure:"status"`
				} `mapstructure:"database"`
			} `mapstructure:"data"`
		}
		Expect(res.DecodeData(&info)).To(Succeed())
		Expect(info.Data.Version).NotTo(BeEmpty())
		Expect(info.Data.Database.Status).To(Equal("connected"))
	})

	It("rejects a wrong credential", func() {
		intruder := admin.New(admin.Config{Credential: "not-the-key"})
		res := intruder.Ping(ctx, fleet[0])
		Expect(res.OK()).To(BeFalse())
		Expect(res.Err).To(ContainSubstring("401"))
	})

	It("checks health across the whole fleet despite a dead instance", func() {
		bulk := client.BulkHealthCheck(ctx, fleet)
		Expect(bulk.Len()).To(Equal(3))

		entries := bulk.Entries()
		Expect(entries[0].Instance).To(Equal(fleet[0]))
		Expect(entries[0].Result.OK()).To(BeTrue())
		Expect(entries[1].Result.OK()).To(BeTrue())
		Expect(entries[2].Result.OK()).To(BeFalse(), "the dead instance must fail, not abort the run")

		var health struct {
			Data struct {
				Summary struct {
					SystemStatus string `mapstructure:"systemStatus"`
					TotalClients int    `mapstructure:"totalClients"`
				} `mapstructure:"summary"`
			} `mapstructure:"data"`
		}
		Expect(entries[1].Result.DecodeData(&health)).To(Succeed())
		Expect(health.Data.Summary.SystemStatus).To(Equal("degraded"))
		Expect(health.Data.Summary.TotalClients).To(Equal(4))

		received := false
		for _, req := range degraded.Requests() {
			if req.Path == "/api/admin/health" {
				received = true
			}
		}
		Expect(received).To(BeTrue(), "the degraded instance should have been health checked")
	})

	It("deploys an integration to the fleet, isolating the broken instance", func() {
		config := map[string]any{
			"integrationName": "enhanced-security-monitoring",
			"version":         "2.1.0",
			"defaultConfig":   map[string]any{"enabled": true},
		}
		bulk := client.BulkDeployIntegration(ctx, fleet[:2], config)
		Expect(bulk.Len()).To(Equal(2))

		ok, found := bulk.Get(fleet[0])
		Expect(found).To(BeTrue())
		Expect(ok.OK()).To(BeTrue())

		broken, found := bulk.Get(fleet[1])
		Expect(found).To(BeTrue())
		Expect(broken.OK()).To(BeFalse())
		Expect(broken.Err).To(ContainSubstring("503"))

		By("verifying the healthy instance received the config")
		var deployReq *platformtest.Request
		reqs := healthy.Requests()
		for i := range reqs {
			if reqs[i].Path == "/api/admin/integrations/deploy" {
				deployReq = &reqs[i]
			}
		}
		Expect(deployReq).NotTo(BeNil())
		Expect(string(deployReq.Body)).To(ContainSubstring("enhanced-security-monitoring"))
	})

	It("executes a migration on a single instance", func() {
		res := client.ExecuteMigration(ctx, fleet[0], map[string]any{
			"migrationId":     fmt.Sprintf("e2e_%d", time.Now().Unix()),
			"targetDatabases": "clients",
			"sqlStatements":   []string{"SELECT 1"},
		})
		Expect(res.OK()).To(BeTrue(), "migration should succeed: %s", res.Err)

		var outcome struct {
			Data struct {
				Results []struct {
					Database string `mapstructure:"database"`
					Status   string `mapstructure:"status"`
				} `mapstructure:"results"`
			} `mapstructure:"data"`
		}
		Expect(res.DecodeData(&outcome)).To(Succeed())
		Expect(outcome.Data.Results).NotTo(BeEmpty())
		for _, r := range outcome.Data.Results {
			Expect(r.Status).To(Equal("success"))
		}
	})
})
