package realtime

import (
	"context"
	"sync"

	"github.com/labstack/echo/v4"
)

// Streams ends open event streams when the server shuts down. Streams never
// finish on their own, so http.Server.Shutdown would otherwise wait for them.
type Streams struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewStreams() *Streams {
	ctx, cancel := context.WithCancel(context.Background())
	return &Streams{ctx: ctx, cancel: cancel}
}

// Middleware cancels the request context of a stream route once Close is called.
func (s *Streams) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s.wg.Add(1)
			defer s.wg.Done()

			ctx, cancel := context.WithCancel(c.Request().Context())
			defer cancel()
			stop := context.AfterFunc(s.ctx, cancel)
			defer stop()
			if s.ctx.Err() != nil {
				cancel()
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// Close ends every open stream and rejects new ones immediately.
func (s *Streams) Close() {
	s.cancel()
}

// Wait blocks until every stream handler has returned.
func (s *Streams) Wait() {
	s.wg.Wait()
}
