package preview

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/image/draw"

	"github.com/five82/kimaideck/internal/state"
)

const (
	cellSize        = 96
	cellGap         = 8
	shutdownTimeout = 5 * time.Second
)

var frameBackground = color.RGBA{18, 18, 22, 255}

// Server serves the current key images of the deck over HTTP.
type Server struct {
	app    *fiber.App
	store  *state.Store
	logger *slog.Logger
}

// New builds the preview routes on top of store.
func New(store *state.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		app:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		store:  store,
		logger: logger,
	}
	s.app.Get("/", s.index)
	s.app.Get("/frame", s.frame)
	s.app.Get("/status", s.status)
	return s
}

// Run listens on addr until ctx ends.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

func (s *Server) index(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(indexHTML)
}

func (s *Server) frame(c *fiber.Ctx) error {
	snap := s.store.Snapshot()
	if snap.Rows == 0 || snap.Cols == 0 {
		return c.Status(fiber.StatusServiceUnavailable).SendString("No device attached")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, compose(snap)); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to encode image")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set(fiber.HeaderContentLength, strconv.Itoa(buf.Len()))
	return c.Send(buf.Bytes())
}

type statusResponse struct {
	Device              string     `json:"device"`
	Rows                int        `json:"rows"`
	Cols                int        `json:"cols"`
	Page                string     `json:"page"`
	LastFetch           *time.Time `json:"last_fetch,omitempty"`
	LastRender          *time.Time `json:"last_render,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	Degraded            bool       `json:"degraded"`
}

func (s *Server) status(c *fiber.Ctx) error {
	snap := s.store.Snapshot()
	resp := statusResponse{
		Device:              snap.Device,
		Rows:                snap.Rows,
		Cols:                snap.Cols,
		Page:                snap.Page,
		LastFetch:           optionalTime(snap.LastFetch),
		LastRender:          optionalTime(snap.LastRender),
		ConsecutiveFailures: snap.ConsecutiveFailures,
		Degraded:            snap.IsDegraded(),
	}
	if snap.LastError != nil {
		resp.LastError = snap.LastError.Error()
	}
	return c.JSON(resp)
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// compose lays the key images out as the device grid.
func compose(snap state.Snapshot) *image.RGBA {
	w := snap.Cols*cellSize + (snap.Cols+1)*cellGap
	h := snap.Rows*cellSize + (snap.Rows+1)*cellGap
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(frameBackground), image.Point{}, draw.Src)

	for i, tile := range snap.Tiles {
		r, c := i/snap.Cols, i%snap.Cols
		x := cellGap + c*(cellSize+cellGap)
		y := cellGap + r*(cellSize+cellGap)
		cell := image.Rect(x, y, x+cellSize, y+cellSize)
		if tile == nil {
			draw.Draw(out, cell, image.Black, image.Point{}, draw.Src)
			continue
		}
		draw.ApproxBiLinear.Scale(out, cell, tile, tile.Bounds(), draw.Src, nil)
	}
	return out
}

const indexHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>kimaideck</title>
<style>
body { background: #121216; color: #ccc; font-family: sans-serif; }
#status { margin-top: 1em; font-size: 0.9em; }
</style>
</head>
<body>
<img id="frame" src="/frame" alt="deck">
<div id="status"></div>
<script>
setInterval(async () => {
  document.getElementById("frame").src = "/frame?t=" + Date.now();
  const res = await fetch("/status");
  const s = await res.json();
  document.getElementById("status").textContent =
    s.device + " · " + (s.page || "-") + (s.last_error ? " · " + s.last_error : "");
}, 1000);
</script>
</body>
</html>
`
