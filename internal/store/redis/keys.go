package redis

const (
	// KeyPrefixEntry is the prefix for entry documents
	KeyPrefixEntry = "bindery:entry:"
	// KeyEntriesByCreated is the sorted set of entry IDs scored by creation time (unix ms)
	KeyEntriesByCreated = "bindery:entries:by_created"
	// ChannelEntryEvents is the pub/sub channel announcing every change
	ChannelEntryEvents = "bindery:entries:events"
)

// EntryKey returns the Redis key for an entry by ID
func EntryKey(id string) string {
	return KeyPrefixEntry + id
}
