/*
Package notify pushes order status changes to the owning user's live
connections.

Delivery is best effort. A Hub keeps one topic per user id; publishing to a
topic nobody subscribed to drops the event, and a subscriber whose buffer is
full misses it. Nothing is queued, retried or persisted. Clients treat the
push as a hint and re-fetch orders over HTTP for the authoritative state.

The Dispatcher is what the order service calls after a status write has
committed. It hands the event to the local Hub without blocking and to every
external Sink on its own goroutine with a timeout:

	OrderService.UpdateStatus
	        │ (after the write commits)
	        ▼
	   Dispatcher.Notify ──► Hub (in-process, per user) ──► websocket clients
	        │
	        ├──► RedisRelay  PUBLISH user:<id>  (other instances relay into their Hub)
	        ├──► KafkaSink   order-status topic, keyed by order id
	        └──► EmailSink   status mail through Postmark

Sink failures are logged and counted; they never reach the caller.
*/
package notify
