// Command wall は公開フィードをポーリングし、新しいシェアを端末に表示する。
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sharewall/backend/internal/logging"
	"github.com/sharewall/backend/internal/model"
	"github.com/sharewall/backend/internal/wall"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", envOr("WALL_SERVER", "http://localhost:8080"), "share wall API base URL")
	interval := flag.Duration("interval", wall.DefaultInterval, "poll interval")
	flag.Parse()

	logging.Setup(os.Getenv("LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := &wall.Poller{
		Source:   wall.NewHTTPFeed(*server),
		Wall:     wall.New(),
		Interval: *interval,
		OnNew: func(added []model.Share) {
			render(os.Stdout, added)
		},
	}

	slog.Info("wall polling", "server", *server, "interval", interval.String())
	p.Run(ctx)
	slog.Info("wall stopped", "shown", p.Wall.Len())
}

// render prints new shares oldest first so the newest ends up at the bottom
// of the terminal.
func render(w io.Writer, added []model.Share) {
	for i := len(added) - 1; i >= 0; i-- {
		s := added[i]
		fmt.Fprintf(w, "── #%d %s (%s)\n", s.ID, s.Name, s.CreatedAt.Local().Format(time.DateTime))
		for _, line := range strings.Split(s.Message, "\n") {
			fmt.Fprintf(w, "   %s\n", line)
		}
		if s.ImageURL != "" {
			fmt.Fprintf(w, "   [image] %s\n", s.ImageURL)
		}
		fmt.Fprintln(w)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
