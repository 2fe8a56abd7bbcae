// Package synccache keeps a locally cached value in sync with one key of a
// session-scoped key-value store, and keeps every consumer of that key in
// sync with each other.
//
// Components:
//   - Entry[V]: the cached value bound to one key. Read/Write never fail;
//     failures are logged and masked behind the initial value.
//   - store.Store: session byte store (memory, bigcache, ristretto, redis).
//   - bus.Bus: in-process notification bus. Every successful write publishes
//     on bus.TopicLocal. When the store is a store.Watcher, New forwards its
//     cross-context signal to bus.TopicStorage, sharing one watch per store
//     handle and bus.
//   - codec.Codec[V]: (de)serializes V <-> stored text. JSON by default.
//
// Usage:
//
//	sess := memory.New(memory.Config{})
//	theme, _ := synccache.New("theme", synccache.Literal("light"), synccache.Options[string]{Store: sess})
//	defer theme.Close()
//
//	theme.Set(ctx, "dark")                                          // persists + notifies
//	theme.Update(ctx, func(s string) string { return s + "-hc" })    // resolves against the store
//	_ = theme.Value()                                               // cached value
//
// Consistency is eventual: another Entry bound to "theme" holds the new value
// once the notification has been delivered. Concurrent writers to one key
// resolve last-write-wins.
package synccache
