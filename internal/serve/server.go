package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inkpipe/internal/build"
	"inkpipe/internal/domain/config"
	"inkpipe/internal/domain/content"
	"inkpipe/internal/index"
)

// Server exposes the post index as a JSON API next to the generated public
// directory and rebuilds everything when the docs change.
type Server struct {
	cfg     config.Config
	store   *index.Store
	builder *build.Builder
	log     *logrus.Entry

	// Debounce is how long the watcher waits for more changes before a
	// rebuild.
	Debounce time.Duration

	watcher   *fsnotify.Watcher
	watchOnce sync.Once
	rebuildMu sync.Mutex
}

func New(cfg config.Config, store *index.Store, builder *build.Builder, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	debounce := cfg.Serve.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Server{
		cfg:      cfg,
		store:    store,
		builder:  builder,
		log:      log.WithField("component", "serve"),
		Debounce: debounce,
	}
}

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Handler builds the gin engine. Unknown paths fall through to the public
// directory.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/posts", s.listPosts)
	api.GET("/posts/:slug", s.getPost)
	api.GET("/tags", s.tagStats)
	api.GET("/categories", s.categoryStats)

	files := http.FileServer(http.Dir(s.cfg.Build.PublicDir))
	r.NoRoute(gin.WrapH(files))
	return r
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.rebuild(ctx); err != nil {
		return err
	}

	// 启动文件监控
	if err := s.startWatch(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	res, err := s.builder.Run(ctx)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"posts":    res.Posts,
		"warnings": len(res.Warnings),
		"took":     time.Since(start).Round(time.Millisecond),
	}).Info("rebuild complete")
	return nil
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		err = filepath.WalkDir(s.cfg.Content.DocsDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.Add(path)
			}
			return nil
		})
		if err != nil {
			return
		}
		go s.watchLoop(ctx)
	})
	return err
}

// relevant reports whether an event should trigger a rebuild. New
// directories are added to the watch list.
func (s *Server) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if ev.Op&fsnotify.Create != 0 {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := s.watcher.Add(ev.Name); err != nil {
				s.log.WithError(err).WithField("dir", ev.Name).Warn("watch dir")
			}
			return true
		}
	}
	return strings.EqualFold(filepath.Ext(ev.Name), ".md")
}

func (s *Server) watchLoop(ctx context.Context) {
	s.log.WithField("dir", s.cfg.Content.DocsDir).Info("watching for file changes")
	debounce := time.NewTicker(time.Hour)
	debounce.Stop()

	trigger := func() {
		select {
		case <-debounce.C:
		default:
		}
		debounce.Reset(s.Debounce)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if s.relevant(ev) {
				trigger()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.WithError(err).Warn("watcher error")
		case <-debounce.C:
			debounce.Stop()
			ctx2, cancel := context.WithTimeout(ctx, time.Minute)
			if err := s.rebuild(ctx2); err != nil {
				s.log.WithError(err).Error("rebuild failed")
			}
			cancel()
		}
	}
}

// summary drops the body from list responses.
func summary(rs []content.PostRecord) []content.PostRecord {
	out := make([]content.PostRecord, len(rs))
	for i, r := range rs {
		r.Content = ""
		out[i] = r
	}
	return out
}

func (s *Server) listPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	opt := index.ListOptions{Page: page, Size: size}

	var (
		posts []content.PostRecord
		err   error
	)
	switch {
	case c.Query("tag") != "":
		posts, err = s.store.ListByTag(c.Query("tag"), opt)
	case c.Query("category") != "":
		posts, err = s.store.ListByCategory(c.Query("category"), opt)
	default:
		posts, err = s.store.List(opt)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts": summary(posts),
		"page":  max(page, 1),
	})
}

func (s *Server) getPost(c *gin.Context) {
	post, err := s.store.Lookup(c.Param("slug"))
	if errors.Is(err, index.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "文章不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) tagStats(c *gin.Context) {
	tags, err := s.store.TagStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (s *Server) categoryStats(c *gin.Context) {
	cats, err := s.store.CategoryStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}
