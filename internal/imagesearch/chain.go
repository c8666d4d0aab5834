package imagesearch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/sirupsen/logrus"
)

// Chain tries each provider in order and falls back to a random placeholder
// image. Resolve never returns an empty string.
type Chain struct {
	Providers       []Provider
	PlaceholderBase string // default https://picsum.photos
	Width, Height   int
	Seed            func() int
	Log             *logrus.Entry
}

func (c *Chain) Resolve(ctx context.Context, query string) string {
	log := c.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	for _, p := range c.Providers {
		u, err := p.Search(ctx, query)
		if err == nil && u != "" {
			return u
		}
		if err != nil && !errors.Is(err, ErrNoKey) {
			log.WithError(err).WithField("query", query).Warn("image search failed, falling back")
		}
	}
	return c.Placeholder()
}

func (c *Chain) Placeholder() string {
	base := strings.TrimRight(c.PlaceholderBase, "/")
	if base == "" {
		base = "https://picsum.photos"
	}
	w, h := c.Width, c.Height
	if w <= 0 {
		w = 1200
	}
	if h <= 0 {
		h = 600
	}
	seed := rand.IntN(1000)
	if c.Seed != nil {
		seed = c.Seed()
	}
	return fmt.Sprintf("%s/seed/%d/%d/%d", base, seed, w, h)
}
