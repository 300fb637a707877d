package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests labeled by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	otpEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_events_total",
			Help: "One-time passcode lifecycle events",
		},
		[]string{"event"},
	)
	pushNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_notifications_total",
			Help: "Push notifications handed to FCM split by per-token result",
		},
		[]string{"result"},
	)
)

// OTP event labels.
const (
	OTPRequested = "requested"
	OTPThrottled = "throttled"
	OTPVerified  = "verified"
	OTPRejected  = "rejected"
	OTPExpired   = "expired"
)

// RecordHTTPRequest increments request counters and records duration.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordOTPEvent counts one passcode lifecycle event.
func RecordOTPEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	otpEventsTotal.WithLabelValues(event).Inc()
}

// RecordPushResult adds per-token delivery outcomes of one broadcast.
func RecordPushResult(success, failure int) {
	pushNotificationsTotal.WithLabelValues("success").Add(float64(success))
	pushNotificationsTotal.WithLabelValues("failure").Add(float64(failure))
}
