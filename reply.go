package gorouteros

import "github.com/netwrk/gorouteros/internal/reply"

// Attrs is a single result element's attribute map.
type Attrs = reply.Attrs

// Reply is the ordered result of a successful command.
type Reply []Attrs
