// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import "github.com/prometheus/client_golang/prometheus"

// Metrics are registered against the default registry at package
// init and
// cover only the registration/statedump control paths (C and E);
// dispatch (D) never touches prometheus, per spec §4.4's "no function
// call" contract for the disabled case.
var (
	eventsRegisteredTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "side",
		Name:      "events_registered",
		Help:      "Number of event descriptions currently registered.",
	})

	callbacksAttachedTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "side",
		Name:      "callbacks_attached",
		Help:      "Number of tracer callbacks currently attached across all events.",
	})

	statedumpRequestsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "side",
		Name:      "statedump_requests_registered",
		Help:      "Number of statedump request handles currently registered.",
	})

	statedumpRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "side",
		Name:      "statedump_runs_total",
		Help:      "Completed statedumps (every participating request handle has returned).",
	})
)

func init() {
	prometheus.MustRegister(
		eventsRegisteredTotal,
		callbacksAttachedTotal,
		statedumpRequestsTotal,
		statedumpRunsTotal,
	)
}
