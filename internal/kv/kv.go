// Package kv provides the durable string key/value store the SDK uses
// for small bookkeeping entries: the locally generated device identifier,
// the last-close timestamp, and the close-event-pending flag.
package kv

// Keys used by the SDK.
const (
	KeyDeviceID           = "device_id"
	KeyLastCloseTimestamp = "lastCloseTimestamp"
	KeyLastCloseDone      = "lastCloseDone"
)

// Store is durable string key/value storage persisted across process
// restarts.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool)
	// Set stores value under key and persists it.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
