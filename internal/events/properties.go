package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PropertyContext carries the contextual fields stamped onto every
// outgoing event. It is assembled once at SDK construction and treated as
// immutable afterwards, except PlayerID which is set on authentication.
type PropertyContext struct {
	DeviceID           string
	GameID             string
	GameName           string
	StudioID           string
	OrganizationID     string
	OrganizationName   string
	OrganizationHandle string
	AdID               string
	AdIDSource         string
	Platform           string
	PlayerID           string
}

// BuildPayload serializes one event object in the batch-endpoint shape:
// {"event_name": name, "properties": {...}}. Properties always include
// the device identifier, the unix-epoch send time, and a fresh insert id;
// contextual and caller-supplied fields are merged on top. Caller fields
// never override the reserved ones.
func (c PropertyContext) BuildPayload(name string, extra map[string]any) (string, error) {
	props := make(map[string]any, len(extra)+12)
	for k, v := range extra {
		props[k] = v
	}

	setIfPresent := func(k, v string) {
		if v != "" {
			props[k] = v
		}
	}
	setIfPresent("game_id", c.GameID)
	setIfPresent("game_name", c.GameName)
	setIfPresent("studio_id", c.StudioID)
	setIfPresent("organization_id", c.OrganizationID)
	setIfPresent("organization_name", c.OrganizationName)
	setIfPresent("organization_handle", c.OrganizationHandle)
	setIfPresent("ad_id", c.AdID)
	setIfPresent("ad_id_source", c.AdIDSource)
	setIfPresent("platform", c.Platform)
	setIfPresent("player_id", c.PlayerID)

	props["device_id"] = c.DeviceID
	props["time"] = time.Now().Unix()
	props["insert_id"] = uuid.NewString()

	payload, err := json.Marshal(map[string]any{
		"event_name": name,
		"properties": props,
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
