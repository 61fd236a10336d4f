package mizuchi

import "expvar"

// serverMetrics record component server activity counters.
type serverMetrics struct {
	requestRecv    expvar.Int // number of multipart requests received
	requestErr     expvar.Int // number of requests answered with an error
	requestTimeout expvar.Int // number of requests that exceeded the timeout
	requestActive  expvar.Int // requests currently being dispatched
	schemaUpdates  expvar.Int // number of schema mapping replacements
	callOut        expvar.Int // number of run-time calls initiated
	callOutErr     expvar.Int // number of run-time calls reporting an error

	emap *expvar.Map
}

var sdkMetrics = newServerMetrics()

func newServerMetrics() *serverMetrics {
	sm := &serverMetrics{emap: new(expvar.Map)}
	sm.emap.Set("requests_received", &sm.requestRecv)
	sm.emap.Set("requests_failed", &sm.requestErr)
	sm.emap.Set("requests_timed_out", &sm.requestTimeout)
	sm.emap.Set("requests_active", &sm.requestActive)
	sm.emap.Set("schema_updates", &sm.schemaUpdates)
	sm.emap.Set("calls_out", &sm.callOut)
	sm.emap.Set("calls_out_failed", &sm.callOutErr)
	return sm
}
