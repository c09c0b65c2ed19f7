// Package mirror is the client's reconciliation layer: a local copy of the
// server snapshot that absorbs full syncs, incremental broadcasts and the
// client's own optimistic writes.
//
// Merge rules
//
//   - Full snapshot (full_sync, sync_data): every top-level field that is
//     present and not null replaces the local field. Absent fields are left
//     alone; a field of the wrong type is skipped on its own.
//   - Single-item append (message, send_message, lantern_added): the item may
//     arrive bare or as {"payload": item}. Items whose id is already present,
//     or that have no id, are discarded.
//   - List replace (gallery_sync, message_sync): wholesale. A payload that is
//     not an array is ignored.
//   - Keyed upsert (user_presence): drop any guest with the same name, append.
//   - Keyed removal (block_user): drop the guest and that name's location.
//   - Scalar overwrite (heart_update, theme_update, theme_sync, config_sync,
//     playlist_update, announcement): replace.
//   - Locations (locations_update, locations_sync): replace the map. Both a
//     name-keyed object and an array of {name|sender, lat, lng, timestamp}
//     are accepted.
//   - Typing (typing): set add/remove. Entries never expire on their own.
//
// No merge returns an error. Subscribers are notified after every change.
package mirror
