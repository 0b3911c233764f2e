package config

import (
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 90*time.Second) // PDF export can take a while
	v.SetDefault("server.bodyLimit", 1024*1024)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("render.styleFile", "")

	// Letter with 1in margins and a short bottom margin.
	v.SetDefault("export.pageSize", "letter")
	v.SetDefault("export.margins.top", 1.0)
	v.SetDefault("export.margins.right", 1.0)
	v.SetDefault("export.margins.bottom", 0.25)
	v.SetDefault("export.margins.left", 1.0)
	v.SetDefault("export.maxFieldRunes", 4000)
	v.SetDefault("export.maxPages", 3)
	v.SetDefault("export.chromePath", "")
	v.SetDefault("export.timeout", 60*time.Second)
	v.SetDefault("export.attempts", 2)

	v.SetDefault("enhancer.vocabularyFile", "")
	v.SetDefault("enhancer.remote.enabled", false)
	v.SetDefault("enhancer.remote.url", "http://ai-service:8000")
	v.SetDefault("enhancer.remote.timeout", 5*time.Second)
	v.SetDefault("enhancer.remote.breaker.maxRequests", 3)
	v.SetDefault("enhancer.remote.breaker.interval", 60*time.Second)
	v.SetDefault("enhancer.remote.breaker.timeout", 60*time.Second)
	v.SetDefault("enhancer.remote.breaker.minRequests", 3)
	v.SetDefault("enhancer.remote.breaker.failureThreshold", 0.6)

	v.SetDefault("rateLimit.enabled", false)
	v.SetDefault("rateLimit.requestsPerMin", 60)
	v.SetDefault("rateLimit.burst", 10)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
