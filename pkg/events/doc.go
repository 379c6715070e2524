// Package events is the fan-out hub (C5): a single bounded broadcast
// point that the event handlers (C4) and the datastore-notify listener
// (C6) publish into, and every streaming transport (C7) subscribes
// from. A slow subscriber loses messages rather than slowing down the
// publisher; a subscriber that falls too far behind is evicted.
package events
