package api

const (
	HealthCheckRoute = "/health"
	AboutRoute       = "/about"

	IssueTokenRoute = "/sts"
)
