package runbook

// categoryKeywords drives the keyword half of the fit score. Matching is
// plain substring matching on the lowercased incident text.
var categoryKeywords = map[string][]string{
	"deployment": {
		"deploy", "release", "rollout", "ci/cd", "pipeline", "build",
		"container", "kubernetes", "k8s", "helm", "docker", "image",
		"version", "upgrade", "rollback", "canary", "blue-green",
	},
	"database": {
		"database", "db", "sql", "query", "postgres", "mysql", "mongo",
		"redis", "cache", "connection pool", "replication", "deadlock",
		"slow query", "index", "migration", "backup", "restore",
	},
	"network": {
		"network", "dns", "load balancer", "connectivity", "timeout",
		"latency", "ssl", "tls", "certificate", "firewall", "vpc",
		"routing", "proxy", "nginx", "haproxy", "cdn",
	},
	"application": {
		"application", "app", "error", "exception", "crash", "memory",
		"cpu", "performance", "slow", "degraded", "bug", "500", "api",
		"endpoint", "service", "microservice",
	},
	"security": {
		"security", "breach", "unauthorized", "vulnerability", "cve",
		"attack", "intrusion", "suspicious", "malware", "phishing",
		"credential", "leak", "exposure", "audit",
	},
	"infrastructure": {
		"infrastructure", "server", "vm", "cloud", "aws", "gcp", "azure",
		"instance", "scaling", "autoscale", "disk", "storage", "compute",
		"region", "zone", "availability",
	},
}
