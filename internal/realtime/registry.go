package realtime

import (
	"fmt"
	"sync"
)

// Client is the write side of one live connection. The owning connection
// handler keeps the transport; the registry only holds this non-owning
// reference for delivery. Send reports whether the write succeeded so the
// hub can count skipped destinations.
type Client interface {
	Send(message []byte) bool
	Close()
}

// conn is one registry entry. userID is empty until the connection
// authenticates; roomID is empty while the connection is in no room.
type conn struct {
	client Client
	userID string
	roomID string
}

// Registry is a concurrent directory of live connections keyed by connection
// id. It is safe for simultaneous use by connection handlers and by
// business-logic goroutines delivering through the hub. Listing operations
// return copied snapshots so no caller ever does transport I/O under the
// registry lock.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*conn)}
}

// Insert registers a fresh connection with no identity and no room.
// Connection ids are generated fresh per accept and never reused, so a
// duplicate id is a programming error and panics.
func (r *Registry) Insert(connectionID string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.conns[connectionID]; exists {
		panic(fmt.Sprintf("realtime: duplicate connection id %q", connectionID))
	}
	r.conns[connectionID] = &conn{client: client}
}

// SetIdentity records the verified user for a connection. A no-op if the
// connection was removed concurrently; that race is benign because the
// owning handler is the only remover.
func (r *Registry) SetIdentity(connectionID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[connectionID]; ok {
		c.userID = userID
	}
}

// SetRoom moves a connection into a room; an empty roomID clears membership.
// A no-op if the connection is gone.
func (r *Registry) SetRoom(connectionID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[connectionID]; ok {
		c.roomID = roomID
	}
}

// Remove deletes a connection entry. Idempotent.
func (r *Registry) Remove(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connectionID)
}

// ByUser returns a snapshot of the clients authenticated as userID.
func (r *Registry) ByUser(userID string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Client
	for _, c := range r.conns {
		if c.userID != "" && c.userID == userID {
			out = append(out, c.client)
		}
	}
	return out
}

// ByRoom returns a snapshot of the clients currently in roomID.
func (r *Registry) ByRoom(roomID string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Client
	for _, c := range r.conns {
		if c.roomID != "" && c.roomID == roomID {
			out = append(out, c.client)
		}
	}
	return out
}

// All returns a snapshot of every registered client.
func (r *Registry) All() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Client, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c.client)
	}
	return out
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
