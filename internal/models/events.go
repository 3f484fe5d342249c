package models

// PendingEventList is one batch of the server's per-share change log.
// Transient: it exists only for the duration of one sync pass.
//
// FullRefresh means the client's cursor is too stale for incremental replay
// and the whole item set must be re-fetched. EventsPending tells the caller
// to fetch another batch after applying this one.
type PendingEventList struct {
	UpdatedItems   []ItemRevision `json:"updated_items"`
	DeletedItemIDs []string       `json:"deleted_item_ids"`
	LatestEventID  string         `json:"latest_event_id"`
	EventsPending  bool           `json:"events_pending"`
	FullRefresh    bool           `json:"full_refresh"`
}
