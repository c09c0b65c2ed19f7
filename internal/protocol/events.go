// Package protocol defines the transport channel's wire format: JSON frames
// carrying a named event and an arbitrary payload.
package protocol

// Client to server events. Several have aliases emitted by different client
// code paths; both names are accepted.
const (
	EventJoinUser         = "join_user"
	EventUserJoin         = "user_join"
	EventSendRSVP         = "send_rsvp"
	EventBlockUser        = "block_user"
	EventAddHeart         = "add_heart"
	EventSendHeart        = "send_heart"
	EventReleaseLantern   = "release_lantern"
	EventSendLantern      = "send_lantern"
	EventSendMessage      = "send_message"
	EventMessage          = "message"
	EventMessageSync      = "message_sync"
	EventUploadMedia      = "upload_media"
	EventGalleryUpload    = "gallery_upload"
	EventGallerySync      = "gallery_sync"
	EventConfigUpdate     = "config_update"
	EventThemeUpdate      = "theme_update"
	EventPlaylistUpdate   = "playlist_update"
	EventSendAnnouncement = "send_announcement"
	EventAnnouncement     = "announcement"
	EventTyping           = "typing"
	EventUpdateLocation   = "update_location"
	EventRequestSync      = "request_sync"
)

// Server to client events. Names shared with the list above (message,
// gallery_sync, message_sync, block_user, playlist_update, theme_update,
// announcement, typing) are reused in this direction.
const (
	EventFullSync        = "full_sync"
	EventSyncData        = "sync_data"
	EventHeartUpdate     = "heart_update"
	EventLanternAdded    = "lantern_added"
	EventLocationsUpdate = "locations_update"
	EventLocationsSync   = "locations_sync"
	EventUserPresence    = "user_presence"
	EventConfigSync      = "config_sync"
	EventThemeSync       = "theme_sync"
)

var clientEvents = map[string]struct{}{
	EventJoinUser: {}, EventUserJoin: {}, EventSendRSVP: {}, EventBlockUser: {},
	EventAddHeart: {}, EventSendHeart: {}, EventReleaseLantern: {}, EventSendLantern: {},
	EventSendMessage: {}, EventMessage: {}, EventMessageSync: {}, EventUploadMedia: {},
	EventGalleryUpload: {}, EventGallerySync: {}, EventConfigUpdate: {}, EventThemeUpdate: {},
	EventPlaylistUpdate: {}, EventSendAnnouncement: {}, EventAnnouncement: {}, EventTyping: {},
	EventUpdateLocation: {}, EventRequestSync: {},
}

// IsClientEvent reports whether name is an event the server understands.
func IsClientEvent(name string) bool {
	_, ok := clientEvents[name]
	return ok
}
