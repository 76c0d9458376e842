package metrics

import "github.com/ServiceWeaver/weaver/metrics"

type EndpointLabel struct {
	Endpoint string
}

type ToggleLabel struct {
	Edge  string
	Added bool
}

type OutcomeLabel struct {
	Outcome string
}

type InconsistencyLabel struct {
	Kind string
}

var (
	// api
	RequestDurationMs = metrics.NewHistogramMap[EndpointLabel](
		"sn_request_duration_ms",
		"Duration of api requests in milliseconds per endpoint",
		metrics.NonNegativeBuckets,
	)
	// social graph service
	Toggles = metrics.NewCounterMap[ToggleLabel](
		"sn_toggles",
		"The number of follow, like and bookmark toggles per edge and direction",
	)
	// post service
	CreatedPosts = metrics.NewCounter(
		"sn_created_posts",
		"The number of created posts",
	)
	CreatedComments = metrics.NewCounter(
		"sn_created_comments",
		"The number of created comments",
	)
	// message service
	SentMessages = metrics.NewCounter(
		"sn_sent_messages",
		"The number of sent direct messages",
	)
	Notifications = metrics.NewCounterMap[OutcomeLabel](
		"sn_notifications",
		"The number of realtime notifications published per outcome",
	)
	// api realtime consumer
	ReceivedNotifications = metrics.NewCounter(
		"sn_received_notifications",
		"The number of realtime notifications received from the broker",
	)
	// reconciler service
	Inconsistencies = metrics.NewCounterMap[InconsistencyLabel](
		"sn_inconsistencies",
		"The number of cross-document inconsistencies found per kind",
	)
)
