package constants

// Route constants shared by the router and URL builders
const (
	ApiPrefix     = "/api"
	HealthRoute   = "/healthz"
	MetricsRoute  = "/metrics"
	WebhookRoute  = ApiPrefix + "/stripe/webhook"
	SwaggerPrefix = "/docs/api/"

	// ReportByTokenRoute is the frontend page that renders a report; the
	// access token is appended.
	ReportByTokenRoute = "/report/by-token/"
)
