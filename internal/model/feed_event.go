package model

// Feed event types pushed to wall stream subscribers.
const (
	FeedEventPublished   = "share.published"
	FeedEventUnpublished = "share.unpublished"
	FeedEventDeleted     = "share.deleted"
)

// FeedEvent describes a change to the public feed.
// Share is set only for FeedEventPublished; pending content never travels in an event.
type FeedEvent struct {
	Type    string `json:"type"`
	ShareID int64  `json:"id"`
	Share   *Share `json:"share,omitempty"`
}
