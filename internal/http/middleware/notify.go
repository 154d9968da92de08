package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/masjid/internal/mqtt"
)

// RecordIDKey is where create handlers leave the id the server assigned.
const RecordIDKey = "recordID"

// ChangeNotifier announces content mutations to displays. *mqtt.Bus implements it.
type ChangeNotifier interface {
	NotifyContentChanged(ctx context.Context, ev mqtt.ContentChanged)
}

var ops = map[string]string{
	http.MethodPost:   "create",
	http.MethodPut:    "update",
	http.MethodDelete: "delete",
}

// NotifyChanges publishes a content change after every successful mutation
// in the group. The kind is the first path segment after prefix, so
// "/api/events/:id" under "/api" is "events".
func NotifyChanges(n ChangeNotifier, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		op, mutating := ops[c.Request.Method]
		if n == nil || !mutating || c.Writer.Status() >= http.StatusMultipleChoices {
			return
		}

		kind := strings.TrimPrefix(c.FullPath(), prefix)
		kind = strings.Trim(kind, "/")
		if i := strings.IndexByte(kind, '/'); i >= 0 {
			kind = kind[:i]
		}
		if kind == "content" {
			kind = "site"
		}

		id := c.Param("id")
		if id == "" {
			id = c.GetString(RecordIDKey)
		}

		// the request context is done once the handler returns
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 5*time.Second)
		defer cancel()
		n.NotifyContentChanged(ctx, mqtt.ContentChanged{Kind: kind, ID: id, Op: op})
	}
}
