// Package hub fans eye-tracking events out to registered observers.
//
// Subscribe(id, observer) / Unsubscribe(id) maintain an explicit registry
// of non-owning handles: the hub never keeps an observer alive, and hosts
// must unsubscribe before tearing an observer down. Delivery to an id that
// has already been removed is a no-op, not a fault.
//
// PublishBlink and PublishEyeData iterate a stable snapshot of the current
// observers taken at publish time, so an observer that adds or removes
// others mid-notification cannot corrupt iteration. Each callback runs in
// isolation: a panicking observer is recovered and logged, the rest still
// receive the event, and the publisher never sees the failure.
package hub
