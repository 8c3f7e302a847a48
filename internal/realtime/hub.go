package realtime

import (
	"encoding/json"
	"log/slog"
)

// Hub fans server-originated events out to the matching subset of live
// connections. Delivery is best-effort and at-most-once: a write to a dead
// transport is counted and skipped, never retried, and never removes the
// entry (removal belongs to the owning connection handler's close path).
type Hub struct {
	registry *Registry
	logger   *slog.Logger
}

// NewHub creates a hub delivering through the given registry.
func NewHub(registry *Registry, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{registry: registry, logger: logger}
}

// Registry exposes the connection directory the hub delivers through.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// DeliveryReport summarizes one fan-out call. Failed counts destinations
// whose transport rejected the write; those connections are reaped later by
// their own handlers.
type DeliveryReport struct {
	Matched int
	Sent    int
	Failed  int
}

// DeliverToUser sends the event to every connection authenticated as userID.
func (h *Hub) DeliverToUser(userID string, evt Event) DeliveryReport {
	return h.deliver("user", userID, h.registry.ByUser(userID), evt)
}

// DeliverToRoom sends the event to every connection currently in roomID.
func (h *Hub) DeliverToRoom(roomID string, evt Event) DeliveryReport {
	return h.deliver("room", roomID, h.registry.ByRoom(roomID), evt)
}

// Broadcast sends the event to every live connection.
func (h *Hub) Broadcast(evt Event) DeliveryReport {
	return h.deliver("all", "", h.registry.All(), evt)
}

// Send delivers one event to a single client, used for handler replies.
// Like fan-out deliveries, a failed write is logged and swallowed.
func (h *Hub) Send(c Client, evt Event) bool {
	raw, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("failed to encode event", "err", err)
		return false
	}
	if !c.Send(raw) {
		h.logger.Debug("reply dropped on dead connection")
		return false
	}
	return true
}

func (h *Hub) deliver(scope, target string, clients []Client, evt Event) DeliveryReport {
	report := DeliveryReport{Matched: len(clients)}
	if len(clients) == 0 {
		return report
	}

	// Serialize once; every destination gets the same bytes.
	raw, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("failed to encode event", "scope", scope, "target", target, "err", err)
		return report
	}

	for _, c := range clients {
		if c.Send(raw) {
			report.Sent++
		} else {
			report.Failed++
		}
	}

	if report.Failed > 0 {
		h.logger.Warn("event delivery skipped dead connections",
			"scope", scope, "target", target, "matched", report.Matched, "failed", report.Failed)
	} else {
		h.logger.Debug("event delivered",
			"scope", scope, "target", target, "matched", report.Matched)
	}
	return report
}
