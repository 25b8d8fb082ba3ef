package config_test

import (
	"testing"

	"github.com/reaperclan/ladder/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	convey.Convey("Given a fresh config", t, func() {
		cfg := config.New()

		convey.Convey("Then defaults are sane", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldBeGreaterThan, 0)
			convey.So(cfg.RequestRatePerSec, convey.ShouldBeGreaterThan, 0)
			convey.So(cfg.SnapshotDailyGuard, convey.ShouldBeFalse)
		})
	})
}
