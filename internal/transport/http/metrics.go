package httptransport

import "expvar"

var (
	metricJobSubmitTotal  = expvar.NewInt("job_submit_total")
	metricJobSubmitErrors = expvar.NewInt("job_submit_errors_total")

	metricBattleOpenTotal  = expvar.NewInt("battle_open_total")
	metricBattleOpenErrors = expvar.NewInt("battle_open_errors_total")

	metricBetPlaceTotal  = expvar.NewInt("bet_place_total")
	metricBetPlaceErrors = expvar.NewInt("bet_place_errors_total")

	metricStreamWebhookTotal    = expvar.NewInt("stream_webhook_total")
	metricStreamWebhookRejected = expvar.NewInt("stream_webhook_rejected_total")
	metricStreamEventsMatched   = expvar.NewInt("stream_events_matched_total")

	metricSSEConnectionsTotal  = expvar.NewInt("sse_connections_total")
	metricSSEConnectionsActive = expvar.NewInt("sse_connections_active")
)
