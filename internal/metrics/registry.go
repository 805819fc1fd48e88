package metrics

// App identifies which part of the platform is emitting metrics. The value
// is attached to every pushed metric as a grouping label and is fixed for
// the lifetime of an emitter.
type App string

const (
	AppServer    App = "server"
	AppWorker    App = "worker"
	AppScheduler App = "scheduler"
)

// Kind is the metric type of a registry entry.
type Kind int

const (
	KindCounter Kind = iota
	KindGauge
	KindTimer
)

// Name is a registered metric name. The set of valid names is closed and
// known at build time; emissions against unregistered names are dropped.
type Name string

const (
	OAuthConsentURLsTotal    Name = "oauth_consent_urls_total"
	OAuthCompletionsTotal    Name = "oauth_completions_total"
	OAuthCompletionErrors    Name = "oauth_completion_errors_total"
	OAuthTokenExchangeMillis Name = "oauth_token_exchange_duration_ms"
	OAuthParamsResolvedTotal Name = "oauth_params_resolved_total"
	SecretsResolvedTotal     Name = "secrets_resolved_total"
	SecretsResolveErrors     Name = "secrets_resolve_errors_total"
	HTTPRequestsTotal        Name = "http_requests_total"
	HTTPRequestMillis        Name = "http_request_duration_ms"
	StoreQueryMillis         Name = "store_query_duration_ms"
	StoreRowsLoaded          Name = "store_rows_loaded"
)

type entry struct {
	kind Kind
	help string
}

// registry is the closed set of metrics the platform may emit.
var registry = map[Name]entry{
	OAuthConsentURLsTotal:    {KindCounter, "Consent URLs built, by provider outcome."},
	OAuthCompletionsTotal:    {KindCounter, "Authorization-code exchanges completed."},
	OAuthCompletionErrors:    {KindCounter, "Authorization-code exchanges that failed."},
	OAuthTokenExchangeMillis: {KindTimer, "Wall time of the provider token exchange."},
	OAuthParamsResolvedTotal: {KindCounter, "OAuth parameter rows resolved from the store."},
	SecretsResolvedTotal:     {KindCounter, "Secret coordinates hydrated into configurations."},
	SecretsResolveErrors:     {KindCounter, "Secret coordinate resolutions that failed."},
	HTTPRequestsTotal:        {KindCounter, "API requests served."},
	HTTPRequestMillis:        {KindTimer, "API request latency."},
	StoreQueryMillis:         {KindTimer, "Configuration store query latency."},
	StoreRowsLoaded:          {KindGauge, "Rows returned by the last store list."},
}
