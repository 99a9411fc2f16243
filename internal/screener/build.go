package screener

import (
	"github.com/wonny/valuescreen/internal/external/finviz"
	"github.com/wonny/valuescreen/internal/external/gurufocus"
	"github.com/wonny/valuescreen/internal/external/zacks"
	"github.com/wonny/valuescreen/pkg/config"
	"github.com/wonny/valuescreen/pkg/httputil"
	"github.com/wonny/valuescreen/pkg/logger"
	"github.com/wonny/valuescreen/pkg/redis"
)

// Build wires a Screener from config: HTTP client, optional page cache and
// the three vendor clients. The returned close func releases Redis.
// An unreachable Redis is logged and the screener runs uncached.
func Build(cfg *config.Config, log *logger.Logger) (*Screener, func() error) {
	// 1. Page cache (no-op when REDIS_ENABLED=false)
	// 연결 실패 시 캐시 없이 진행 (캐시는 선택 사항)
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Page cache unavailable, continuing without cache")
		rdb = redis.Disabled()
	}

	// 2. HTTP client
	httpClient := httputil.New(cfg, log).
		WithCache(redis.NewCache(rdb, "screener"), cfg.Redis.CacheTTL)

	// 3. Vendor clients
	finvizClient := finviz.NewClient(httpClient, log)
	zacksClient := zacks.NewClient(httpClient, log, cfg.Zacks.BaseURL)
	guruClient := gurufocus.NewClient(httpClient, log, cfg.GuruFocus.BaseURL)

	s := New(
		finvizClient,
		zacksClient,
		guruClient,
		ThresholdsFromConfig(cfg.Screen),
		cfg.Screen.Concurrency,
		log,
	)

	log.WithFields(map[string]interface{}{
		"concurrency":   cfg.Screen.Concurrency,
		"page_cache":    rdb.Enabled(),
		"zacks_url":     cfg.Zacks.BaseURL,
		"gurufocus_url": cfg.GuruFocus.BaseURL,
		"min_pred":      cfg.Screen.MinPredictability,
		"min_mos":       cfg.Screen.MinMarginOfSafety,
	}).Debug("Screener initialized")

	return s, rdb.Close
}
