// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package search turns raw query text into a venue list.

# Lifecycle

A Pipeline starts idle. Every SetQueryText restarts the debounce window and
only the last text of a quiet window is committed. Committing a new,
non-blank term moves the pipeline to pending and starts a fetch. When the
fetch completes the pipeline becomes ready with the returned venues, or an
empty list if the fetch failed.

	idle -> pending -> ready -> pending -> ready ...

Blank terms and repeats of the current term are never fetched. The
previous venues stay on screen. A blank commit still replaces the committed
term, so clearing the box and retyping the same text searches again.

# Ordering

Each fetch captures a generation number. A result whose generation is not
current is discarded, so a slow search can never overwrite a newer one.
Superseded fetches also have their context cancelled.

# Ownership

The pipeline is not safe for concurrent use. Timer expiry and fetch
completion arrive as Message values on the inbox passed to New; the owner
reads them and calls Handle on the same goroutine:

	inbox := make(chan search.Message, 16)
	p := search.New(source, inbox, search.WithClock(clock))

	for msg := range inbox {
		if p.Handle(msg) {
			// venue set changed
		}
	}
*/
package search
