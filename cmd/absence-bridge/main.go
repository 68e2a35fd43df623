package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/united-manufacturing-hub/umh-utils/env"
	"github.com/united-manufacturing-hub/umh-utils/logger"
	"go.uber.org/zap"

	"github.com/peoplesync/absence-bridge/internal"
	"github.com/peoplesync/absence-bridge/pkg/engagementclient"
	"github.com/peoplesync/absence-bridge/pkg/hrclient"
	"github.com/peoplesync/absence-bridge/pkg/leavesync"
)

var buildtime string

func main() {
	logLevel, _ := env.GetAsString("LOGGING_LEVEL", false, "PRODUCTION") //nolint:errcheck
	log := logger.New(logLevel)
	defer func(logger *zap.SugaredLogger) {
		_ = logger.Sync()
	}(log)
	zap.S().Infof("This is absence-bridge build date: %s", buildtime)

	zap.S().Debug("Checking environment variables")
	hrAPIURL, err := env.GetAsString("HR_API_URL", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	hrAPIKey, err := env.GetAsString("HR_API_KEY", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	engagementAPIURL, err := env.GetAsString("ENGAGEMENT_API_URL", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	engagementAPIKey, err := env.GetAsString("ENGAGEMENT_API_KEY", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	defaultPolicyID, err := env.GetAsString("DEFAULT_POLICY_ID", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	defaultApproverID, err := env.GetAsString("DEFAULT_APPROVER_ID", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}

	fullSyncInterval, err := env.GetAsInt("FULL_SYNC_INTERVAL_SECONDS", false, 3600)
	if err != nil {
		zap.S().Error(err)
	}
	approvalCheckInterval, err := env.GetAsInt("APPROVAL_CHECK_INTERVAL_SECONDS", false, 300)
	if err != nil {
		zap.S().Error(err)
	}
	mappingTTL, err := env.GetAsInt("MAPPING_TTL_SECONDS", false, 1800)
	if err != nil {
		zap.S().Error(err)
	}
	policyCacheTTL, err := env.GetAsInt("POLICY_CACHE_TTL_SECONDS", false, 3600)
	if err != nil {
		zap.S().Error(err)
	}
	batchSize, err := env.GetAsInt("SYNC_BATCH_SIZE", false, leavesync.DefaultBatchSize)
	if err != nil {
		zap.S().Error(err)
	}
	runLogCapacity, err := env.GetAsInt("RUN_LOG_CAPACITY", false, 50)
	if err != nil {
		zap.S().Error(err)
	}
	approverCacheSize, err := env.GetAsInt("APPROVER_CACHE_SIZE", false, 512)
	if err != nil {
		zap.S().Error(err)
	}
	apiPort, err := env.GetAsInt("API_PORT", false, 8080)
	if err != nil {
		zap.S().Error(err)
	}
	var reasonFields []string
	err = env.GetAsType("REASON_FIELD_ORDER", &reasonFields, false, []string{})
	if err != nil {
		zap.S().Error(err)
	}

	hr := hrclient.New(hrclient.Config{
		BaseURL: hrAPIURL,
		APIKey:  hrAPIKey,
	})
	engagement := engagementclient.New(engagementclient.Config{
		BaseURL: engagementAPIURL,
		APIKey:  engagementAPIKey,
	})

	directory := leavesync.NewMappingDirectory(hr, engagement, time.Duration(mappingTTL)*time.Second)
	resolver, err := leavesync.NewManagerApproverResolver(hr, directory, defaultApproverID, approverCacheSize)
	if err != nil {
		zap.S().Fatalf("Failed to build approver resolver: %s", err)
	}
	runLog := internal.NewRunLog(runLogCapacity)
	engine, err := leavesync.NewEngine(leavesync.EngineConfig{
		BatchSize:        batchSize,
		DefaultPolicyID:  defaultPolicyID,
		PolicyCacheTTL:   time.Duration(policyCacheTTL) * time.Second,
		ReasonFieldOrder: reasonFields,
	}, hr, engagement, resolver, runLog)
	if err != nil {
		zap.S().Fatalf("Failed to build sync engine: %s", err)
	}

	r := newRunner(engine, directory)

	zap.S().Debug("Starting healthcheck")
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000))
	gs := internal.NewGracefulShutdown(func() error {
		// Let an in-flight run finish so no sync session is left open.
		r.mu.Lock()
		defer r.mu.Unlock()
		return nil
	})
	health.AddReadinessCheck("shutting-down", func() error {
		if gs.ShuttingDown() {
			return fmt.Errorf("shutting down")
		}
		return nil
	})
	go func() {
		/* #nosec G114 */
		err := http.ListenAndServe("0.0.0.0:8086", health)
		if err != nil {
			zap.S().Errorf("Error starting healthcheck: %s", err)
		}
	}()

	go setupRestAPI(apiPort, r, directory, runLog)

	go scheduleRuns(r, gs,
		time.Duration(fullSyncInterval)*time.Second,
		time.Duration(approvalCheckInterval)*time.Second)

	zap.S().Infof("Ready, syncing every %ds with approval checks every %ds", fullSyncInterval, approvalCheckInterval)
	gs.Wait()
}

// scheduleRuns serializes the periodic work: one full sync at startup and on
// every full-sync tick, approval checks on the tighter interval in between.
// The runner's lock keeps runs mutually exclusive, including against runs
// triggered over the debug API.
func scheduleRuns(r *runner, gs internal.GracefulShutdownHandler, fullSyncEvery, approvalCheckEvery time.Duration) {
	fullSyncTicker := time.NewTicker(fullSyncEvery)
	defer fullSyncTicker.Stop()
	approvalTicker := time.NewTicker(approvalCheckEvery)
	defer approvalTicker.Stop()

	r.fullSync()

	for {
		select {
		case <-fullSyncTicker.C:
			if gs.ShuttingDown() {
				return
			}
			r.fullSync()
		case <-approvalTicker.C:
			if gs.ShuttingDown() {
				return
			}
			r.approvalCheck()
		}
	}
}
